package runtime

import (
	"fmt"

	"github.com/aretw0/journeys/pkg/domain"
)

// AnswerTypeError is returned when an answer does not have the shape its
// question type expects. The session state is left untouched.
type AnswerTypeError struct {
	Key  domain.AnswerKey
	Type domain.QuestionType
	Err  error
}

func (e *AnswerTypeError) Error() string {
	return fmt.Sprintf("answer %s does not fit question type %s: %v", e.Key, e.Type, e.Err)
}

func (e *AnswerTypeError) Unwrap() error {
	return e.Err
}

// RequiredMessage is the error shown when q is left blank.
func RequiredMessage(q *domain.Question) string {
	if q != nil && q.ErrorText != "" {
		return q.ErrorText
	}
	return domain.DefaultRequiredMessage
}

// ValidateStep checks a single step. It returns the message to show and
// false when the step is required and blank.
func ValidateStep(step domain.Step, answers domain.Answers) (string, bool) {
	if !step.Required() {
		return "", true
	}
	if domain.IsBlank(answers.Value(step.Key)) {
		return RequiredMessage(step.Question), false
	}
	return "", true
}

// ValidateFields checks every given step and collects one message per
// failing field.
func ValidateFields(steps []domain.Step, answers domain.Answers) map[domain.AnswerKey]string {
	errs := make(map[domain.AnswerKey]string)
	for _, s := range steps {
		if msg, ok := ValidateStep(s, answers); !ok {
			errs[s.Key] = msg
		}
	}
	return errs
}
