package validator

import (
	"fmt"
	"strings"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"   // The journey will not behave as designed
	SeverityWarning Severity = "warning" // Silently degraded at runtime
	SeverityInfo    Severity = "info"    // Fixed by Normalize
)

// Issue is one finding about a journey document.
type Issue struct {
	Severity   Severity `json:"severity"`
	PageID     string   `json:"pageId,omitempty"`
	GroupID    string   `json:"groupId,omitempty"`
	QuestionID string   `json:"questionId,omitempty"`
	Message    string   `json:"message"`
}

func (i Issue) String() string {
	var loc []string
	if i.PageID != "" {
		loc = append(loc, "page "+i.PageID)
	}
	if i.GroupID != "" {
		loc = append(loc, "group "+i.GroupID)
	}
	if i.QuestionID != "" {
		loc = append(loc, "question "+i.QuestionID)
	}
	if len(loc) == 0 {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, strings.Join(loc, " > "), i.Message)
}

// IssuesError wraps the error-severity issues of a journey.
type IssuesError struct {
	JourneyID string
	Issues    []Issue
}

func (e *IssuesError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("journey %q: found %d errors:\n- %s", e.JourneyID, len(e.Issues), strings.Join(lines, "\n- "))
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the issues with the given severity.
func Filter(issues []Issue, sev Severity) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}
