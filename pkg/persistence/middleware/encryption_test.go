package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"testing"

	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	state := domain.NewState("s")
	state.Answers["email"] = "ada@example.com"
	state.CurrentVehicle["vehicle_use"] = "commuting"
	require.NoError(t, secure.Save(ctx, "s", state))

	stored, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, stored.Answers, "answers must not be stored in clear")
	assert.Empty(t, stored.CurrentVehicle)
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, string(stored.Sealed), "ada@example.com")
	assert.Equal(t, domain.StatusActive, stored.Status)

	loaded, err := secure.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", loaded.Answers["email"])
	assert.Equal(t, "commuting", loaded.CurrentVehicle["vehicle_use"])
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	state := domain.NewState("rot")
	state.Answers["zip_code"] = "94105"
	require.NoError(t, secureOld.Save(ctx, "rot", state))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "94105", loaded.Answers["zip_code"])

	loaded.Answers["zip_code"] = "10001"
	require.NoError(t, secureNew.Save(ctx, "rot", loaded))

	_, err = secureOld.Load(ctx, "rot")
	assert.Error(t, err, "old key alone must not open new-key data")
}

func TestEncryptionMiddleware_PlainStateFails(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", domain.NewState("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("zz")
	assert.Error(t, err)
	_, err = middleware.ParseKey("abcd")
	assert.ErrorContains(t, err, "32 bytes")
}
