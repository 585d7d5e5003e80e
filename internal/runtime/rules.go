package runtime

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/journeys/pkg/domain"
)

// EvaluateRule reports whether rule matches the plain answer of its target
// question. target is the referenced question; nil means the reference is
// dangling and the rule never matches.
//
// EvaluateRule is total: malformed operands fail closed to false.
func EvaluateRule(rule domain.Rule, answers domain.Answers, target *domain.Question) bool {
	return evaluate(rule, answers.Value(domain.Key(rule.QuestionID)), target)
}

func evaluate(rule domain.Rule, ans any, target *domain.Question) bool {
	if target == nil {
		return false
	}

	switch rule.Operator {
	case domain.OpIsAnswered:
		return domain.IsAnswered(ans)
	case domain.OpIsNotAnswered:
		return !domain.IsAnswered(ans)
	}
	if !rule.Operator.Known() {
		return false
	}

	want := stringify(rule.Value)

	if list, ok := domain.AsStringList(ans); ok {
		switch rule.Operator {
		case domain.OpContains:
			return slices.Contains(list, want)
		case domain.OpNotContains:
			return !slices.Contains(list, want)
		case domain.OpEquals:
			return strings.Join(list, ",") == want
		case domain.OpNotEquals:
			return strings.Join(list, ",") != want
		}
		ans = strings.Join(list, ",")
	}

	// Numeric questions compare numerically for every operator; contains
	// and not_contains have no numeric meaning and never match.
	if rule.Operator.IsOrdering() || target.Type.IsNumeric() {
		a, aOk := toFloat(ans)
		b, bOk := toFloat(rule.Value)
		if !aOk || !bOk {
			return false
		}
		return compareNumeric(rule.Operator, a, b)
	}

	got := strings.ToLower(stringify(ans))
	want = strings.ToLower(want)
	switch rule.Operator {
	case domain.OpEquals:
		return got == want
	case domain.OpNotEquals:
		return got != want
	case domain.OpContains:
		return strings.Contains(got, want)
	case domain.OpNotContains:
		return !strings.Contains(got, want)
	}
	return false
}

func compareNumeric(op domain.Operator, a, b float64) bool {
	switch op {
	case domain.OpEquals:
		return a == b
	case domain.OpNotEquals:
		return a != b
	case domain.OpGreater:
		return a > b
	case domain.OpGreaterEqual:
		return a >= b
	case domain.OpLess:
		return a < b
	case domain.OpLessEqual:
		return a <= b
	}
	return false
}

// toFloat coerces numbers and numeric strings. Blank strings, booleans and
// non-finite values do not parse.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringify renders a scalar the way the editor displays it.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}
	if list, ok := domain.AsStringList(v); ok {
		return strings.Join(list, ",")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
