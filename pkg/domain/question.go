package domain

// QuestionType is the closed set of question kinds a journey can contain.
type QuestionType string

const (
	QuestionText       QuestionType = "text"
	QuestionTextarea   QuestionType = "textarea"
	QuestionNumber     QuestionType = "number"
	QuestionCurrency   QuestionType = "currency"
	QuestionPercent    QuestionType = "percent"
	QuestionEmail      QuestionType = "email"
	QuestionTel        QuestionType = "tel"
	QuestionPostcode   QuestionType = "postcode"
	QuestionDate       QuestionType = "date"
	QuestionSelect     QuestionType = "select"
	QuestionRadio      QuestionType = "radio"
	QuestionCheckboxes QuestionType = "checkboxes"
	QuestionCheckbox   QuestionType = "checkbox"
	QuestionYesNo      QuestionType = "yesno"
	QuestionDisplay    QuestionType = "display"
)

// QuestionTypes lists every known type in editor order.
var QuestionTypes = []QuestionType{
	QuestionText, QuestionTextarea, QuestionNumber, QuestionCurrency,
	QuestionPercent, QuestionEmail, QuestionTel, QuestionPostcode,
	QuestionDate, QuestionSelect, QuestionRadio, QuestionCheckboxes,
	QuestionCheckbox, QuestionYesNo, QuestionDisplay,
}

// AnswerShape describes the Go value an answer of a given type holds.
type AnswerShape int

const (
	// ShapeNone marks non-interactive types that never hold an answer.
	ShapeNone AnswerShape = iota
	// ShapeString is a single string.
	ShapeString
	// ShapeNumeric is a number, or a string that should parse as one.
	ShapeNumeric
	// ShapeBool is a boolean toggle.
	ShapeBool
	// ShapeStringList is an ordered list of selected options.
	ShapeStringList
)

func (s AnswerShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeString:
		return "string"
	case ShapeNumeric:
		return "numeric"
	case ShapeBool:
		return "bool"
	case ShapeStringList:
		return "[string]"
	}
	return "unknown"
}

// ParseQuestionType maps a raw tag onto the closed set. Unknown tags fall back
// to QuestionText and report ok=false so callers can flag the document.
func ParseQuestionType(raw string) (QuestionType, bool) {
	t := QuestionType(raw)
	if t.Known() {
		return t, true
	}
	return QuestionText, false
}

// Known reports whether t is part of the closed set.
func (t QuestionType) Known() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionNumber, QuestionCurrency,
		QuestionPercent, QuestionEmail, QuestionTel, QuestionPostcode,
		QuestionDate, QuestionSelect, QuestionRadio, QuestionCheckboxes,
		QuestionCheckbox, QuestionYesNo, QuestionDisplay:
		return true
	}
	return false
}

// Shape returns the answer shape for t.
func (t QuestionType) Shape() AnswerShape {
	switch t {
	case QuestionDisplay:
		return ShapeNone
	case QuestionNumber, QuestionCurrency, QuestionPercent:
		return ShapeNumeric
	case QuestionCheckbox:
		return ShapeBool
	case QuestionCheckboxes:
		return ShapeStringList
	case QuestionText, QuestionTextarea, QuestionEmail, QuestionTel,
		QuestionPostcode, QuestionDate, QuestionSelect, QuestionRadio,
		QuestionYesNo:
		return ShapeString
	}
	return ShapeString
}

// IsNumeric reports whether rule comparisons against t are numeric.
func (t QuestionType) IsNumeric() bool {
	return t.Shape() == ShapeNumeric
}

// HasOptions reports whether t carries an options list.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionSelect, QuestionRadio, QuestionCheckboxes:
		return true
	}
	return false
}

// Interactive reports whether t collects an answer.
func (t QuestionType) Interactive() bool {
	return t.Shape() != ShapeNone
}

// YesNoOptions are the fixed choices of a yesno question.
var YesNoOptions = []string{"Yes", "No"}
