package schema

import "github.com/aretw0/journeys/pkg/domain"

// Schema is a map of question ids to the type their answers must have.
// Example: {"age": Number(), "cover": Slice(String())}
type Schema map[string]Type

// ForJourney builds the answer schema of every question in j, follow-up
// questions included. The first question with a given id wins.
func ForJourney(j *domain.Journey) Schema {
	s := make(Schema)
	if j == nil {
		return s
	}
	var add func(qs []domain.Question)
	add = func(qs []domain.Question) {
		for i := range qs {
			q := &qs[i]
			if _, dup := s[q.ID]; !dup && q.ID != "" {
				s[q.ID] = ForQuestion(q)
			}
			if q.FollowUp != nil {
				add(q.FollowUp.Questions)
			}
		}
	}
	for _, p := range j.Pages {
		for _, g := range p.Groups {
			add(g.Questions)
		}
	}
	return s
}

// Validate checks every present value in data against the schema.
// Nil values are always accepted: they clear an answer.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	var errs []error

	for fieldName, value := range data {
		if err := ValidateField(schema, fieldName, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateField checks a single answer value.
func ValidateField(schema Schema, fieldName string, value any) error {
	fieldType, exists := schema[fieldName]
	if !exists {
		return &ValidationError{
			Key:    fieldName,
			Reason: "not defined in schema",
			Value:  value,
		}
	}
	if value == nil {
		return nil
	}
	if err := fieldType.Validate(value); err != nil {
		return &ValidationError{
			Key:    fieldName,
			Reason: err.Error(),
			Value:  value,
		}
	}
	return nil
}
