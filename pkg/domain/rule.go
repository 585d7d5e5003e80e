package domain

// Operator is a rule comparison.
type Operator string

const (
	OpEquals        Operator = "equals"
	OpNotEquals     Operator = "not_equals"
	OpContains      Operator = "contains"
	OpNotContains   Operator = "not_contains"
	OpGreater       Operator = "gt"
	OpGreaterEqual  Operator = "gte"
	OpLess          Operator = "lt"
	OpLessEqual     Operator = "lte"
	OpIsAnswered    Operator = "is_answered"
	OpIsNotAnswered Operator = "is_not_answered"
)

// Operators lists every known operator.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains,
	OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
	OpIsAnswered, OpIsNotAnswered,
}

// Known reports whether op is a recognised operator.
func (op Operator) Known() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// IsOrdering reports whether op always compares numerically.
func (op Operator) IsOrdering() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	}
	return false
}

// Rule is a single visibility condition against an earlier answer.
// Value is whatever the editor stored: usually a string, sometimes a number.
type Rule struct {
	QuestionID string   `json:"questionId" yaml:"questionId" mapstructure:"questionId"`
	Operator   Operator `json:"operator" yaml:"operator" mapstructure:"operator"`
	Value      any      `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}
