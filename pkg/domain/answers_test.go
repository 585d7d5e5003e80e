package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerKey_TextRoundTrip(t *testing.T) {
	keys := []AnswerKey{
		Key("q1"),
		Key("has/slash"),
		InstanceKey("drivers", "name", "8f1c"),
		InstanceKey("a/b", "c d", "e%f"),
	}
	for _, k := range keys {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back AnswerKey
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back, "key %q", text)
	}
}

func TestStep_JSONRoundTrip(t *testing.T) {
	steps := []Step{
		{ID: "quote", Kind: StepPage, PageID: "quote", Template: TemplateQuote, InstanceIndex: NoInstance},
		{ID: "claims/amount/i1", Key: InstanceKey("claims", "amount", "i1"), Kind: StepQuestion, PageID: "driver", InstanceID: "i1"},
	}

	data, err := json.Marshal(steps)
	require.NoError(t, err)

	var back []Step
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, steps, back)
	assert.True(t, back[0].Key.IsZero())
}

func TestAnswerKey_Distinct(t *testing.T) {
	// The same question under two parents or instances never collides.
	a := InstanceKey("p1", "q", "i1")
	b := InstanceKey("p2", "q", "i1")
	c := InstanceKey("p1", "q", "i2")
	assert.NotEqual(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())
	assert.NotEqual(t, Key("q").String(), a.String())
}

func TestParseAnswerKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "a/b", "a/b/c/d", "a//c", "%zz"} {
		_, err := ParseAnswerKey(s)
		assert.Error(t, err, s)
	}
}

func TestAnswers_JSON(t *testing.T) {
	a := NewAnswers()
	a.Set(Key("name"), "Ada")
	a.Set(Key("age"), 36.0)
	a.Set(Key("cover"), []string{"fire", "theft"})
	a.Set(InstanceKey("drivers", "licence", "i1"), true)
	a.SetInstanceIDs("drivers", []string{"i1"})

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var back Answers
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestAnswers_SetNilDeletes(t *testing.T) {
	a := NewAnswers()
	a.Set(Key("q"), "x")
	a.Set(Key("q"), nil)
	_, ok := a.Get(Key("q"))
	assert.False(t, ok)
}

func TestAnswers_CloneIsolation(t *testing.T) {
	a := NewAnswers()
	a.Set(Key("cover"), []string{"fire"})
	a.SetInstanceIDs("p", []string{"i1"})

	c := a.Clone()
	c.Values[Key("cover")].([]string)[0] = "flood"
	c.Instances["p"][0] = "i2"

	assert.Equal(t, []string{"fire"}, a.Value(Key("cover")))
	assert.Equal(t, []string{"i1"}, a.InstanceIDs("p"))
}

func TestEmptiness(t *testing.T) {
	tests := []struct {
		value    any
		answered bool
		blank    bool
	}{
		{nil, false, true},
		{"", false, true},
		{" ", true, false},
		{[]string{}, false, true},
		{[]any{}, false, true},
		{[]string{"a"}, true, false},
		{false, true, true},
		{true, true, false},
		{0.0, true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.answered, IsAnswered(tt.value), "IsAnswered(%#v)", tt.value)
		assert.Equal(t, tt.blank, IsBlank(tt.value), "IsBlank(%#v)", tt.value)
	}
}
