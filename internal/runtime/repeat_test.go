package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/pkg/domain"
)

func repeatParent(minN, maxN int) *domain.Question {
	parent := withFollowUp("drivers",
		domain.Repeat{Enabled: true, Min: minN, Max: maxN},
		q("name", domain.QuestionText),
		q("licence", domain.QuestionText),
	)
	return &parent
}

func TestAddInstance_Bounds(t *testing.T) {
	parent := repeatParent(1, 3)
	answers := domain.NewAnswers()
	gen := seqIDs()

	for i := 1; i <= 3; i++ {
		_, ok := runtime.AddInstance(parent, &answers, gen)
		assert.True(t, ok, "call %d", i)
	}
	_, ok := runtime.AddInstance(parent, &answers, gen)
	assert.False(t, ok)
	assert.Len(t, runtime.InstanceIDs(parent, answers), 3)
}

func TestRemoveInstance_Bounds(t *testing.T) {
	parent := repeatParent(1, 3)
	answers := domain.NewAnswers()
	answers.SetInstanceIDs("drivers", []string{"a", "b", "c"})

	assert.True(t, runtime.RemoveInstance(parent, &answers, "b"))
	assert.True(t, runtime.RemoveInstance(parent, &answers, "a"))
	assert.False(t, runtime.RemoveInstance(parent, &answers, "c"))
	assert.Equal(t, []string{"c"}, runtime.InstanceIDs(parent, answers))

	assert.False(t, runtime.RemoveInstance(parent, &answers, "unknown"))
}

func TestRemoveInstance_DeletesOnlyThatInstance(t *testing.T) {
	parent := repeatParent(0, 3)
	answers := answersOf(map[string]any{"drivers": "Yes", "name": "plain"})
	answers.SetInstanceIDs("drivers", []string{"a", "b"})
	answers.Set(domain.InstanceKey("drivers", "name", "a"), "Ada")
	answers.Set(domain.InstanceKey("drivers", "licence", "a"), "L1")
	answers.Set(domain.InstanceKey("drivers", "name", "b"), "Bob")
	answers.Set(domain.InstanceKey("other", "name", "a"), "kept")

	require.True(t, runtime.RemoveInstance(parent, &answers, "a"))

	_, ok := answers.Get(domain.InstanceKey("drivers", "name", "a"))
	assert.False(t, ok)
	_, ok = answers.Get(domain.InstanceKey("drivers", "licence", "a"))
	assert.False(t, ok)
	assert.Equal(t, "Bob", answers.Value(domain.InstanceKey("drivers", "name", "b")))
	assert.Equal(t, "kept", answers.Value(domain.InstanceKey("other", "name", "a")))
	assert.Equal(t, "plain", answers.Value(domain.Key("name")))
}

func TestEnsureMinInstances(t *testing.T) {
	parent := repeatParent(2, 5)

	t.Run("trigger matches", func(t *testing.T) {
		answers := answersOf(map[string]any{"drivers": "Yes"})
		ids := runtime.EnsureMinInstances(parent, &answers, seqIDs())
		assert.Equal(t, []string{"i1", "i2"}, ids)

		// Idempotent once at min.
		ids = runtime.EnsureMinInstances(parent, &answers, seqIDs())
		assert.Equal(t, []string{"i1", "i2"}, ids)
	})

	t.Run("trigger does not match", func(t *testing.T) {
		answers := answersOf(map[string]any{"drivers": "No"})
		assert.Empty(t, runtime.EnsureMinInstances(parent, &answers, seqIDs()))
		assert.Empty(t, answers.Instances)
	})

	t.Run("non-repeatable follow-up keeps no list", func(t *testing.T) {
		plain := withFollowUp("claims", domain.Repeat{}, q("when", domain.QuestionDate))
		answers := answersOf(map[string]any{"claims": "Yes"})
		answers.SetInstanceIDs("claims", []string{"stale"})

		assert.Empty(t, runtime.EnsureMinInstances(&plain, &answers, seqIDs()))
		assert.Empty(t, answers.InstanceIDs("claims"))
	})
}

func TestClearAllInstances(t *testing.T) {
	parent := repeatParent(1, 3)
	answers := answersOf(map[string]any{"drivers": "Yes"})
	answers.SetInstanceIDs("drivers", []string{"a", "b"})
	answers.Set(domain.InstanceKey("drivers", "name", "a"), "Ada")
	answers.Set(domain.InstanceKey("drivers", "name", "b"), "Bob")

	runtime.ClearAllInstances(parent, &answers)

	assert.Empty(t, answers.InstanceIDs("drivers"))
	assert.Equal(t, 1, answers.Len())
	assert.Equal(t, "Yes", answers.Value(domain.Key("drivers")))
}

func TestAddInstance_RequiresRepeat(t *testing.T) {
	plain := withFollowUp("claims", domain.Repeat{}, q("when", domain.QuestionDate))
	answers := domain.NewAnswers()

	_, ok := runtime.AddInstance(&plain, &answers, seqIDs())
	assert.False(t, ok)
}
