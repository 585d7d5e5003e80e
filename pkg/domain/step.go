package domain

// StepKind tells a question step from a whole-page step.
type StepKind string

const (
	StepQuestion StepKind = "question"
	StepPage     StepKind = "page"
)

// NoInstance is the InstanceIndex of steps outside a repeat instance.
const NoInstance = -1

// Step is a render-ready projection of one unit of interaction.
// Steps are rebuilt from the journey and answers on every change and are
// never persisted.
type Step struct {
	// ID is unique within one step list: the text form of Key for question
	// steps, the page id for page steps.
	ID string `json:"id"`
	// Key addresses the answer of a question step. Zero for page steps.
	Key  AnswerKey `json:"key"`
	Kind StepKind  `json:"kind"`

	PageID    string   `json:"pageId"`
	PageName  string   `json:"pageName"`
	Template  Template `json:"template"`
	GroupID   string   `json:"groupId,omitempty"`
	GroupName string   `json:"groupName,omitempty"`

	Question *Question `json:"question,omitempty"`

	ParentQuestionID string `json:"parentQuestionId,omitempty"`
	InstanceID       string `json:"instanceId,omitempty"`
	InstanceIndex    int    `json:"instanceIndex"`
	InstanceLabel    string `json:"instanceLabel,omitempty"`
}

// IsFollowUp reports whether s was expanded from a follow-up.
func (s Step) IsFollowUp() bool {
	return s.ParentQuestionID != ""
}

// Required reports whether s gates advancement on a non-blank answer.
func (s Step) Required() bool {
	return s.Kind == StepQuestion && s.Question != nil && s.Question.Required && s.Question.Type.Interactive()
}

// FindStep returns the index of the step with the given id, or -1.
func FindStep(steps []Step, id string) int {
	for i := range steps {
		if steps[i].ID == id {
			return i
		}
	}
	return -1
}

// FindStepByKey returns the index of the question step answering k, or -1.
func FindStepByKey(steps []Step, k AnswerKey) int {
	for i := range steps {
		if steps[i].Kind == StepQuestion && steps[i].Key == k {
			return i
		}
	}
	return -1
}
