package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/journeys/pkg/domain"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{3.14, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNumberType(t *testing.T) {
	typ := Number()

	if typ.Name() != "number" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "number")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int64(42), false},
		{3.5, false},
		{json.Number("12.5"), false},
		{"42", false},
		{" 7.25 ", false},
		{"", false},
		{"forty", true},
		{math.NaN(), true},
		{math.Inf(1), true},
		{true, true},
		{[]string{"1"}, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{true, false},
		{false, false},
		{"true", true},
		{1, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(String())

	if typ.Name() != "[string]" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "[string]")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{[]string{"a", "b"}, false},
		{[]string{}, false},
		{[]any{"a", "b"}, false},
		{[]any{"a", 2}, true},
		{"a", true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestForQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question domain.Question
		value    any
		wantErr  bool
	}{
		{"text accepts string", domain.Question{Type: domain.QuestionText}, "hi", false},
		{"text rejects number", domain.Question{Type: domain.QuestionText}, 3.0, true},
		{"currency accepts numeric string", domain.Question{Type: domain.QuestionCurrency}, "1200.50", false},
		{"percent rejects words", domain.Question{Type: domain.QuestionPercent}, "half", true},
		{"checkbox accepts bool", domain.Question{Type: domain.QuestionCheckbox}, false, false},
		{"checkbox rejects string", domain.Question{Type: domain.QuestionCheckbox}, "yes", true},
		{"yesno accepts Yes", domain.Question{Type: domain.QuestionYesNo}, "Yes", false},
		{"yesno rejects maybe", domain.Question{Type: domain.QuestionYesNo}, "Maybe", true},
		{"select in options", domain.Question{Type: domain.QuestionSelect, Options: []string{"Car", "Van"}}, "Van", false},
		{"select outside options", domain.Question{Type: domain.QuestionSelect, Options: []string{"Car", "Van"}}, "Bus", true},
		{"select without options", domain.Question{Type: domain.QuestionSelect}, "Bus", false},
		{"checkboxes subset", domain.Question{Type: domain.QuestionCheckboxes, Options: []string{"a", "b"}}, []string{"b"}, false},
		{"checkboxes foreign", domain.Question{Type: domain.QuestionCheckboxes, Options: []string{"a", "b"}}, []string{"c"}, true},
		{"display rejects anything", domain.Question{Type: domain.QuestionDisplay}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ForQuestion(&tt.question).Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantErr  bool
	}{
		{"string", "string", false},
		{"number", "number", false},
		{"bool", "bool", false},
		{"none", "none", false},
		{"[string]", "[string]", false},
		{"[[number]]", "[[number]]", false},
		{"int", "", true},
		{"[]", "", true},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q).Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestSchemaJSON(t *testing.T) {
	s := Schema{"age": Number(), "cover": Slice(String())}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"age":"number","cover":"[string]"}` {
		t.Errorf("Marshal = %s", data)
	}

	var back Schema
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["age"].Name() != "number" || back["cover"].Name() != "[string]" {
		t.Errorf("Unmarshal = %v", back)
	}
}
