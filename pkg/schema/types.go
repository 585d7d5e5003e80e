package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/journeys/pkg/domain"
)

// Type defines the contract for answer validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "number").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// NumberType validates numbers and strings holding a number. The empty
// string is accepted so that a cleared field can be stored as typed.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint32, uint64, float32:
		return nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("expected finite number, got %v", v)
		}
		return nil
	case json.Number:
		if _, err := v.Float64(); err != nil {
			return fmt.Errorf("expected number, got %q", v.String())
		}
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("expected number, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// NoneType rejects every value. Display blocks carry no answer.
type NoneType struct{}

func (t *NoneType) Name() string { return "none" }

func (t *NoneType) Validate(value any) error {
	return fmt.Errorf("question takes no answer, got %T", value)
}

// OneOfType restricts a base type to a fixed option list. Every element of
// a list value must be an option.
type OneOfType struct {
	base    Type
	options []string
}

func (t *OneOfType) Name() string { return t.base.Name() }

func (t *OneOfType) Validate(value any) error {
	if err := t.base.Validate(value); err != nil {
		return err
	}
	if list, ok := domain.AsStringList(value); ok {
		for _, v := range list {
			if !slices.Contains(t.options, v) {
				return fmt.Errorf("%q is not one of %v", v, t.options)
			}
		}
		return nil
	}
	if s, ok := value.(string); ok && s != "" && !slices.Contains(t.options, s) {
		return fmt.Errorf("%q is not one of %v", s, t.options)
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Number creates a numeric type validator.
func Number() Type { return &NumberType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// None creates a validator that accepts nothing.
func None() Type { return &NoneType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// OneOf restricts base to the given options. An empty option list leaves
// base unrestricted.
func OneOf(base Type, options ...string) Type {
	if len(options) == 0 {
		return base
	}
	return &OneOfType{base: base, options: slices.Clone(options)}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ForShape returns the base validator of an answer shape.
func ForShape(shape domain.AnswerShape) Type {
	switch shape {
	case domain.ShapeNone:
		return None()
	case domain.ShapeNumeric:
		return Number()
	case domain.ShapeBool:
		return Bool()
	case domain.ShapeStringList:
		return Slice(String())
	}
	return String()
}

// ForQuestion returns the validator for answers to q. Option-bearing
// questions and yesno questions only accept their listed choices.
func ForQuestion(q *domain.Question) Type {
	base := ForShape(q.Type.Shape())
	switch {
	case q.Type == domain.QuestionYesNo:
		return OneOf(base, domain.YesNoOptions...)
	case q.Type.HasOptions():
		return OneOf(base, q.Options...)
	}
	return base
}

// ParseType converts a string type name to a Type.
// Supports "string", "number", "bool", "none" and slices such as "[string]".
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "number":
		return Number(), nil
	case "bool":
		return Bool(), nil
	case "none":
		return None(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"age": "number", "cover": "[string]"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
