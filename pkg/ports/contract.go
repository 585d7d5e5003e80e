package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "motor", domain.ModePage)
		state.StepIndex = 2
		state.Answers.Set(domain.Key("name"), "Ada")
		state.Answers.Set(domain.Key("age"), 42)
		state.Answers.Set(domain.Key("cover"), []string{"fire", "theft"})
		state.Answers.Set(domain.InstanceKey("claims", "date", "i1"), "2024-01-02")
		state.Answers.SetInstanceIDs("claims", []string{"i1"})
		state.PageErrors[domain.Key("email")] = "Enter an email"

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.JourneyID, loaded.JourneyID)
		assert.Equal(t, state.Mode, loaded.Mode)
		assert.Equal(t, 2, loaded.StepIndex)
		assert.Equal(t, "Ada", loaded.Answers.Value(domain.Key("name")))
		// JSON backends may decode numbers as float64.
		assert.EqualValues(t, 42, loaded.Answers.Value(domain.Key("age")))
		assert.Equal(t, []string{"fire", "theft"}, loaded.Answers.Value(domain.Key("cover")))
		assert.Equal(t, "2024-01-02", loaded.Answers.Value(domain.InstanceKey("claims", "date", "i1")))
		assert.Equal(t, []string{"i1"}, loaded.Answers.InstanceIDs("claims"))
		assert.Equal(t, "Enter an email", loaded.PageErrors[domain.Key("email")])
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Answers.Set(domain.Key("name"), "Grace")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Answers.Value(domain.Key("name")))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, "motor", domain.ModeQuestion)))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, "motor", domain.ModeQuestion)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, "motor", domain.ModeQuestion)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		sort.Strings(sessions)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunJourneyLoaderContract verifies that a JourneyLoader serves exactly the
// given journey IDs, each normalized and isolated from its callers.
func RunJourneyLoaderContract(t *testing.T, loader JourneyLoader, ids []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("ListJourneys", func(t *testing.T) {
		got, err := loader.ListJourneys(ctx)
		require.NoError(t, err)
		want := append([]string(nil), ids...)
		sort.Strings(want)
		assert.Equal(t, want, got)
	})

	t.Run("GetJourney", func(t *testing.T) {
		for _, id := range ids {
			j, err := loader.GetJourney(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, id, j.ID)
			require.GreaterOrEqual(t, len(j.Pages), len(domain.CheckoutTemplates), "checkout pages present")
			last := j.Pages[len(j.Pages)-1]
			assert.Equal(t, domain.TemplatePayment, last.Template)
		}
	})

	t.Run("GetJourney returns a copy", func(t *testing.T) {
		if len(ids) == 0 {
			t.Skip("no journeys")
		}
		j, err := loader.GetJourney(ctx, ids[0])
		require.NoError(t, err)
		j.Pages = nil

		again, err := loader.GetJourney(ctx, ids[0])
		require.NoError(t, err)
		assert.NotEmpty(t, again.Pages)
	})

	t.Run("GetJourney NotFound", func(t *testing.T) {
		_, err := loader.GetJourney(ctx, "non-existent-journey")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})
}
