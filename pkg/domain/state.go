package domain

// SessionStatus is the lifecycle position of a preview session.
type SessionStatus string

const (
	StatusOpen     SessionStatus = "open"     // Collecting answers
	StatusComplete SessionStatus = "complete" // Advanced past the last step
	StatusClosed   SessionStatus = "closed"   // Discarded; no further transitions
)

// DefaultRequiredMessage is reported when a required question has no errorText.
const DefaultRequiredMessage = "This field is required."

// State is the snapshot of one preview session.
type State struct {
	SessionID string        `json:"sessionId"`
	JourneyID string        `json:"journeyId"`
	Mode      PreviewMode   `json:"mode"`
	Status    SessionStatus `json:"status"`

	// StepIndex is the cursor into the current step list. It is clamped
	// into range every time the list is rebuilt.
	StepIndex int `json:"stepIndex"`

	Answers Answers `json:"answers"`

	// LastError is the single question-mode validation message.
	LastError     string    `json:"lastError,omitempty"`
	LastErrorStep AnswerKey `json:"lastErrorStep,omitzero"`

	// PageErrors maps each failing field of the current page to its message.
	PageErrors map[AnswerKey]string `json:"pageErrors,omitempty"`
}

// NewState creates an empty open session.
func NewState(sessionID, journeyID string, mode PreviewMode) *State {
	return &State{
		SessionID:  sessionID,
		JourneyID:  journeyID,
		Mode:       mode,
		Status:     StatusOpen,
		Answers:    NewAnswers(),
		PageErrors: make(map[AnswerKey]string),
	}
}

// HasErrors reports whether the last advance attempt was blocked.
func (s *State) HasErrors() bool {
	return s.LastError != "" || len(s.PageErrors) > 0
}

// ClearErrors drops every validation message.
func (s *State) ClearErrors() {
	s.LastError = ""
	s.LastErrorStep = AnswerKey{}
	s.PageErrors = make(map[AnswerKey]string)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Answers = s.Answers.Clone()
	out.PageErrors = make(map[AnswerKey]string, len(s.PageErrors))
	for k, v := range s.PageErrors {
		out.PageErrors[k] = v
	}
	return &out
}
