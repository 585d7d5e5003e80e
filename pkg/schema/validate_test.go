package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/journeys/pkg/domain"
)

func sampleJourney() *domain.Journey {
	return &domain.Journey{
		Pages: []domain.Page{{
			ID: "p1",
			Groups: []domain.Group{{
				ID: "g1",
				Questions: []domain.Question{
					{ID: "age", Type: domain.QuestionNumber},
					{ID: "cover", Type: domain.QuestionCheckboxes, Options: []string{"fire", "theft"}},
					{
						ID:   "drivers",
						Type: domain.QuestionYesNo,
						FollowUp: &domain.FollowUp{
							Enabled:   true,
							Questions: []domain.Question{{ID: "driverName", Type: domain.QuestionText}},
						},
					},
				},
			}},
		}},
	}
}

func TestForJourney(t *testing.T) {
	s := ForJourney(sampleJourney())

	want := map[string]string{
		"age":        "number",
		"cover":      "[string]",
		"drivers":    "string",
		"driverName": "string",
	}
	if len(s) != len(want) {
		t.Fatalf("ForJourney() = %d entries, want %d", len(s), len(want))
	}
	for id, name := range want {
		if s[id] == nil || s[id].Name() != name {
			t.Errorf("ForJourney()[%q] = %v, want %q", id, s[id], name)
		}
	}
}

func TestValidate_Success(t *testing.T) {
	s := ForJourney(sampleJourney())

	data := map[string]any{
		"age":        "42",
		"cover":      []string{"fire"},
		"drivers":    "Yes",
		"driverName": "Ada",
	}

	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_NilClears(t *testing.T) {
	s := ForJourney(sampleJourney())
	if err := Validate(s, map[string]any{"age": nil}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	s := ForJourney(sampleJourney())

	data := map[string]any{
		"age":     "old",
		"cover":   []string{"flood"},
		"unknown": "x",
	}

	err := Validate(s, data)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("ValidationErrors() = %d, want 3: %v", len(errs), err)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should find a *ValidationError")
	}
}

func TestValidateField(t *testing.T) {
	s := ForJourney(sampleJourney())

	err := ValidateField(s, "drivers", "Maybe")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ValidateField() = %v, want *ValidationError", err)
	}
	if ve.Key != "drivers" {
		t.Errorf("Key = %q, want %q", ve.Key, "drivers")
	}
}
