package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func stateWith(answers map[AnswerKey]any) *State {
	s := NewState("sess-1", "motor", ModeQuestion)
	for k, v := range answers {
		s.Answers.Set(k, v)
	}
	return s
}

func TestDiff(t *testing.T) {
	open := StatusOpen
	complete := StatusComplete

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff // nil means no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  stateWith(map[AnswerKey]any{Key("q1"): "a"}),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Status:    &open,
				StepIndex: &[]int{0}[0],
				Answers:   map[AnswerKey]any{Key("q1"): "a"},
			},
		},
		{
			name:     "No Changes",
			old:      stateWith(map[AnswerKey]any{Key("q1"): "a"}),
			new:      stateWith(map[AnswerKey]any{Key("q1"): "a"}),
			wantDiff: nil,
		},
		{
			name: "Completion",
			old:  stateWith(nil),
			new: func() *State {
				s := stateWith(nil)
				s.Status = StatusComplete
				return s
			}(),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Status:    &complete,
			},
		},
		{
			name: "Answers Added, Modified and Deleted",
			old:  stateWith(map[AnswerKey]any{Key("a"): "x", Key("b"): "old", Key("c"): true}),
			new:  stateWith(map[AnswerKey]any{Key("a"): "x", Key("b"): "new", Key("d"): []string{"1"}}),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Answers: map[AnswerKey]any{
					Key("b"): "new",
					Key("c"): nil,
					Key("d"): []string{"1"},
				},
			},
		},
		{
			name: "Step Advance",
			old:  stateWith(nil),
			new: func() *State {
				s := stateWith(nil)
				s.StepIndex = 2
				return s
			}(),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				StepIndex: &[]int{2}[0],
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}
			if got.SessionID != tt.wantDiff.SessionID {
				t.Errorf("SessionID = %v, want %v", got.SessionID, tt.wantDiff.SessionID)
			}
			if !reflect.DeepEqual(got.Answers, tt.wantDiff.Answers) {
				t.Errorf("Answers = %v, want %v", got.Answers, tt.wantDiff.Answers)
			}
			if !equalPtr(got.Status, tt.wantDiff.Status) {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantDiff.Status)
			}
			if !equalPtr(got.StepIndex, tt.wantDiff.StepIndex) {
				t.Errorf("StepIndex = %v, want %v", got.StepIndex, tt.wantDiff.StepIndex)
			}
		})
	}
}

func TestDiffInstancesAndErrors(t *testing.T) {
	old := stateWith(nil)
	old.Answers.SetInstanceIDs("drivers", []string{"i1", "i2"})
	old.PageErrors[Key("q1")] = "required"

	updated := old.Clone()
	updated.Answers.SetInstanceIDs("drivers", []string{"i1"})
	updated.PageErrors = map[AnswerKey]string{}

	diff := Diff(old, updated)
	if diff == nil {
		t.Fatal("expected diff, got nil")
	}
	if !reflect.DeepEqual(diff.Instances, map[string][]string{"drivers": {"i1"}}) {
		t.Errorf("Instances = %v", diff.Instances)
	}
	if !diff.PageErrorsCleared {
		t.Error("expected PageErrorsCleared")
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Answers Omitted", func(t *testing.T) {
		s1 := stateWith(map[AnswerKey]any{Key("a"): "1"})
		s2 := s1.Clone()
		s2.StepIndex = 1
		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("expected diff, got nil")
		}
		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"answers"`) {
			t.Errorf("JSON should not contain 'answers' when unchanged, got: %s", bytes)
		}
	})

	t.Run("Deletions as Null", func(t *testing.T) {
		s1 := stateWith(map[AnswerKey]any{Key("a"): "1", InstanceKey("p", "q", "i1"): "2"})
		s2 := stateWith(map[AnswerKey]any{Key("a"): "1"})
		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("expected diff, got nil")
		}
		bytes, _ := json.Marshal(diff)
		if !strings.Contains(string(bytes), `"p/q/i1":null`) {
			t.Errorf("JSON should contain the deleted instance key as null, got: %s", bytes)
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
