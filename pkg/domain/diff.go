package domain

import (
	"maps"
	"reflect"
	"slices"
)

// StateDiff represents the changes between two session states.
// It is serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"sessionId"`

	Status    *SessionStatus `json:"status,omitempty"`
	StepIndex *int           `json:"stepIndex,omitempty"`

	// Answers contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Answers map[AnswerKey]any `json:"answers,omitempty"`

	// Instances contains the full new list of every parent whose list
	// changed. A removed parent maps to an empty list.
	Instances map[string][]string `json:"instances,omitempty"`

	// LastError is set when the message changed; "" means cleared.
	LastError *string `json:"lastError,omitempty"`

	// PageErrors is the whole new map whenever it changed.
	PageErrors map[AnswerKey]string `json:"pageErrors,omitempty"`
	// PageErrorsCleared is true when the map went from non-empty to empty.
	PageErrorsCleared bool `json:"pageErrorsCleared,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if oldState == nil || oldState.StepIndex != newState.StepIndex {
		diff.StepIndex = &newState.StepIndex
	}
	if oldState == nil {
		if newState.LastError != "" {
			diff.LastError = &newState.LastError
		}
	} else if oldState.LastError != newState.LastError {
		diff.LastError = &newState.LastError
	}

	diff.Answers = diffAnswers(oldState, newState)
	diff.Instances = diffInstances(oldState, newState)
	diffPageErrors(diff, oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old, new *State) map[AnswerKey]any {
	delta := make(map[AnswerKey]any)

	if old == nil {
		maps.Copy(delta, new.Answers.Values)
	} else {
		for k, newVal := range new.Answers.Values {
			oldVal, exists := old.Answers.Values[k]
			if !exists || !reflect.DeepEqual(oldVal, newVal) {
				delta[k] = newVal
			}
		}
		for k := range old.Answers.Values {
			if _, exists := new.Answers.Values[k]; !exists {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffInstances(old, new *State) map[string][]string {
	delta := make(map[string][]string)

	for p, ids := range new.Answers.Instances {
		if old == nil || !slices.Equal(old.Answers.Instances[p], ids) {
			delta[p] = ids
		}
	}
	if old != nil {
		for p := range old.Answers.Instances {
			if _, exists := new.Answers.Instances[p]; !exists {
				delta[p] = []string{}
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffPageErrors(diff *StateDiff, old, new *State) {
	var prev map[AnswerKey]string
	if old != nil {
		prev = old.PageErrors
	}
	if maps.Equal(prev, new.PageErrors) {
		return
	}
	if len(new.PageErrors) == 0 {
		diff.PageErrorsCleared = len(prev) > 0
		return
	}
	diff.PageErrors = maps.Clone(new.PageErrors)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Status == nil &&
		d.StepIndex == nil &&
		d.LastError == nil &&
		len(d.Answers) == 0 &&
		len(d.Instances) == 0 &&
		len(d.PageErrors) == 0 &&
		!d.PageErrorsCleared
}
