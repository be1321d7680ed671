package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))

	require.NoError(t, store.Save(context.Background(), "abc", domain.NewState("abc")))
	assert.True(t, mr.Exists("test:session:abc"))
	assert.True(t, mr.Exists("test:index"))
}

func TestRedisStore_ReservedLookingIDs(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	for _, id := range []string{"index", "lock:index", "session:index"} {
		t.Run(id, func(t *testing.T) {
			state := domain.NewState(id)
			state.Answers["zip_code"] = "94105"
			require.NoError(t, store.Save(ctx, id, state))

			unlock, err := locker.Lock(ctx, id, 5*time.Second)
			require.NoError(t, err)

			loaded, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "94105", loaded.Answers["zip_code"])

			require.NoError(t, unlock(ctx))
		})
	}

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index", "lock:index", "session:index"}, sessions)
	assert.Equal(t, "zset", mr.Type("test:index"), "the index stays a sorted set")

	require.NoError(t, store.Delete(ctx, "index"))
	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lock:index", "session:index"}, sessions)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	state := domain.NewState(sessionID)
	state.Answers["zip_code"] = "94105"
	require.NoError(t, store.Save(ctx, sessionID, state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned against wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
