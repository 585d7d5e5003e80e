package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// AnswerKey addresses one answer. Plain questions (and non-repeatable
// follow-up questions) set only QuestionID; repeat instances set all three.
type AnswerKey struct {
	ParentID   string
	QuestionID string
	InstanceID string
}

// Key returns the key of a plain question answer.
func Key(questionID string) AnswerKey {
	return AnswerKey{QuestionID: questionID}
}

// InstanceKey returns the key of a follow-up answer inside a repeat instance.
func InstanceKey(parentID, questionID, instanceID string) AnswerKey {
	return AnswerKey{ParentID: parentID, QuestionID: questionID, InstanceID: instanceID}
}

// IsInstance reports whether k belongs to a repeat instance.
func (k AnswerKey) IsInstance() bool {
	return k.InstanceID != ""
}

// IsZero reports whether k addresses nothing.
func (k AnswerKey) IsZero() bool {
	return k == AnswerKey{}
}

// String renders k in its text form: the escaped question id, or
// parent/question/instance with each segment path-escaped.
func (k AnswerKey) String() string {
	if !k.IsInstance() {
		return url.PathEscape(k.QuestionID)
	}
	return url.PathEscape(k.ParentID) + "/" + url.PathEscape(k.QuestionID) + "/" + url.PathEscape(k.InstanceID)
}

// MarshalText lets AnswerKey act as a JSON object key.
func (k AnswerKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form produced by MarshalText. Empty text is
// the zero key that page steps carry.
func (k *AnswerKey) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = AnswerKey{}
		return nil
	}
	parsed, err := ParseAnswerKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseAnswerKey parses the text form of an AnswerKey.
func ParseAnswerKey(s string) (AnswerKey, error) {
	parts := strings.Split(s, "/")
	unescaped := make([]string, len(parts))
	for i, p := range parts {
		u, err := url.PathUnescape(p)
		if err != nil {
			return AnswerKey{}, fmt.Errorf("invalid answer key %q: %w", s, err)
		}
		if u == "" {
			return AnswerKey{}, fmt.Errorf("invalid answer key %q: empty segment", s)
		}
		unescaped[i] = u
	}
	switch len(unescaped) {
	case 1:
		return Key(unescaped[0]), nil
	case 3:
		return InstanceKey(unescaped[0], unescaped[1], unescaped[2]), nil
	}
	return AnswerKey{}, fmt.Errorf("invalid answer key %q: expected 1 or 3 segments, got %d", s, len(parts))
}

// Answers is the live answer map of a preview session together with the
// repeat-instance bookkeeping of each repeatable follow-up parent.
type Answers struct {
	Values map[AnswerKey]any `json:"values"`
	// Instances maps a parent question id to its live instance ids,
	// oldest first.
	Instances map[string][]string `json:"instances,omitempty"`
}

// NewAnswers returns an empty answer map.
func NewAnswers() Answers {
	return Answers{
		Values:    make(map[AnswerKey]any),
		Instances: make(map[string][]string),
	}
}

// Get returns the answer stored under k.
func (a Answers) Get(k AnswerKey) (any, bool) {
	v, ok := a.Values[k]
	return v, ok
}

// Value returns the answer stored under k, or nil.
func (a Answers) Value(k AnswerKey) any {
	return a.Values[k]
}

// Set stores v under k. A nil v removes the answer.
func (a *Answers) Set(k AnswerKey, v any) {
	if v == nil {
		a.Delete(k)
		return
	}
	if a.Values == nil {
		a.Values = make(map[AnswerKey]any)
	}
	a.Values[k] = v
}

// Delete removes the answer stored under k.
func (a *Answers) Delete(k AnswerKey) {
	delete(a.Values, k)
}

// DeleteWhere removes every answer whose key matches and returns the count.
func (a *Answers) DeleteWhere(match func(AnswerKey) bool) int {
	n := 0
	for k := range a.Values {
		if match(k) {
			delete(a.Values, k)
			n++
		}
	}
	return n
}

// InstanceIDs returns a copy of the live instance ids under parentID.
func (a Answers) InstanceIDs(parentID string) []string {
	return append([]string(nil), a.Instances[parentID]...)
}

// SetInstanceIDs replaces the instance list of parentID. An empty list
// removes the entry.
func (a *Answers) SetInstanceIDs(parentID string, ids []string) {
	if len(ids) == 0 {
		delete(a.Instances, parentID)
		return
	}
	if a.Instances == nil {
		a.Instances = make(map[string][]string)
	}
	a.Instances[parentID] = ids
}

// Len returns the number of stored answers.
func (a Answers) Len() int {
	return len(a.Values)
}

// Clone returns a copy that shares no mutable state with a.
func (a Answers) Clone() Answers {
	out := NewAnswers()
	for k, v := range a.Values {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out.Values[k] = v
	}
	for p, ids := range a.Instances {
		out.Instances[p] = append([]string(nil), ids...)
	}
	return out
}

// UnmarshalJSON restores answers and narrows decoded lists back to []string.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw struct {
		Values    map[AnswerKey]any   `json:"values"`
		Instances map[string][]string `json:"instances"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = NewAnswers()
	for k, v := range raw.Values {
		a.Values[k] = NormalizeValue(v)
	}
	for p, ids := range raw.Instances {
		a.SetInstanceIDs(p, ids)
	}
	return nil
}

// NormalizeValue converts decoded list values into []string so that
// answers read back from JSON or YAML have the same shape as live ones.
func NormalizeValue(v any) any {
	if list, ok := AsStringList(v); ok {
		return list
	}
	return v
}

// AsStringList returns v as a list of strings when it is a list whose
// elements are all strings.
func AsStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// IsAnswered reports whether v counts as an answer for rule evaluation:
// anything except nil, the empty string and an empty list.
func IsAnswered(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return true
}

// IsBlank reports whether v fails a required check. It is stricter than
// IsAnswered: an unchecked toggle (false) is blank as well.
func IsBlank(v any) bool {
	if b, ok := v.(bool); ok {
		return !b
	}
	return !IsAnswered(v)
}

// IDGenerator produces unique opaque ids for new repeat instances.
type IDGenerator func() string
