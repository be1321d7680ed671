package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Cursor = 5
		state.Answers["zip_code"] = "94105"
		state.CurrentVehicle["vehicle_use"] = "commuting"
		state.CompletedVehicles = append(state.CompletedVehicles, map[string]string{"vehicle_identifier": "2020 Toyota Camry"})
		state.VehicleFlowActive = true
		state.Attempts[domain.AttemptKey("vehicle_use", 5)] = 2
		state.PushTurn(domain.Turn{QuestionID: "vehicle_use", Input: "dunno", Feedback: "Please choose one."})

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, 5, loaded.Cursor)
		assert.Equal(t, "94105", loaded.Answers["zip_code"])
		assert.Equal(t, "commuting", loaded.CurrentVehicle["vehicle_use"])
		require.Len(t, loaded.CompletedVehicles, 1)
		assert.Equal(t, "2020 Toyota Camry", loaded.CompletedVehicles[0]["vehicle_identifier"])
		assert.True(t, loaded.VehicleFlowActive)
		assert.Equal(t, 2, loaded.Attempts["vehicle_use@5"])
		require.Len(t, loaded.RecentTurns, 1)
		assert.Equal(t, "dunno", loaded.RecentTurns[0].Input)
		assert.Equal(t, domain.StatusActive, loaded.Status)
	})

	t.Run("Load is isolated from later mutation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Answers["email"] = "a@b.co"
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Answers["email"] = "changed"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "a@b.co", loaded.Answers["email"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
