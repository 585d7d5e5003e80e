package runtime

import (
	"slices"

	"github.com/google/uuid"

	"github.com/aretw0/journeys/pkg/domain"
)

// NewInstanceID is the default instance id generator.
func NewInstanceID() string {
	return uuid.NewString()
}

// TriggerMatches reports whether the live answer of parent equals its
// follow-up trigger value. The comparison is exact.
func TriggerMatches(parent *domain.Question, answers domain.Answers) bool {
	if !parent.HasFollowUp() {
		return false
	}
	v, ok := answers.Value(domain.Key(parent.ID)).(string)
	return ok && v == parent.FollowUp.TriggerValue
}

// InstanceIDs returns the live instances of parent, oldest first.
func InstanceIDs(parent *domain.Question, answers domain.Answers) []string {
	return answers.InstanceIDs(parent.ID)
}

// EnsureMinInstances tops the instance list of parent up to its minimum
// while the trigger matches. A parent without a repeatable follow-up never
// keeps an instance list.
func EnsureMinInstances(parent *domain.Question, answers *domain.Answers, newID domain.IDGenerator) []string {
	if !parent.HasRepeatableFollowUp() {
		answers.SetInstanceIDs(parent.ID, nil)
		return nil
	}
	ids := answers.InstanceIDs(parent.ID)
	if !TriggerMatches(parent, *answers) {
		return ids
	}
	minN, _ := parent.FollowUp.Repeat.Bounds()
	for len(ids) < minN {
		ids = append(ids, generate(newID))
	}
	answers.SetInstanceIDs(parent.ID, ids)
	return ids
}

// AddInstance appends a new instance unless the list is already at max.
func AddInstance(parent *domain.Question, answers *domain.Answers, newID domain.IDGenerator) (string, bool) {
	if !parent.HasRepeatableFollowUp() {
		return "", false
	}
	_, maxN := parent.FollowUp.Repeat.Bounds()
	ids := answers.InstanceIDs(parent.ID)
	if len(ids) >= maxN {
		return "", false
	}
	id := generate(newID)
	answers.SetInstanceIDs(parent.ID, append(ids, id))
	return id, true
}

// RemoveInstance drops one instance and every answer recorded inside it,
// unless that would take the list below min.
func RemoveInstance(parent *domain.Question, answers *domain.Answers, instanceID string) bool {
	if !parent.HasRepeatableFollowUp() {
		return false
	}
	ids := answers.InstanceIDs(parent.ID)
	i := slices.Index(ids, instanceID)
	if i < 0 {
		return false
	}
	minN, _ := parent.FollowUp.Repeat.Bounds()
	if len(ids)-1 < minN {
		return false
	}
	answers.SetInstanceIDs(parent.ID, slices.Delete(ids, i, i+1))
	answers.DeleteWhere(func(k domain.AnswerKey) bool {
		return k.ParentID == parent.ID && k.InstanceID == instanceID
	})
	return true
}

// ClearAllInstances deletes every instance answer under parent and empties
// its instance list.
func ClearAllInstances(parent *domain.Question, answers *domain.Answers) {
	answers.DeleteWhere(func(k domain.AnswerKey) bool {
		return k.ParentID == parent.ID && k.IsInstance()
	})
	answers.SetInstanceIDs(parent.ID, nil)
}

func generate(newID domain.IDGenerator) string {
	if newID == nil {
		return NewInstanceID()
	}
	return newID()
}
