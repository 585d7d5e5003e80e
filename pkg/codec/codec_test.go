package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/pkg/domain"
)

const motorYAML = `
lineOfBusiness: motor
meta:
  version: "2"
  previewMode: page
pages:
  - id: driver
    name: Driver
    template: form
    flow:
      - type: text
        id: intro
        title: Welcome
        bodyHtml: "<p>Hello<script>x</script></p>"
      - type: group
        id: g1
    groups:
      - id: g1
        name: About you
        questions:
          - id: age
            type: number
            title: Age
            required: "true"
          - id: convictions
            type: yesno
            title: Any convictions?
            logic:
              enabled: true
              rules:
                - questionId: age
                  operator: gte
                  value: 17
            followUp:
              enabled: true
              triggerValue: "Yes"
              repeat:
                enabled: true
                min: 1
                max: 3
                itemLabel: Conviction
              questions:
                - id: code
                  type: text
                  title: Code
`

func TestDecodeYAML(t *testing.T) {
	j, issues, err := Decode([]byte(motorYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "motor", j.LineOfBusiness)
	assert.Equal(t, 2, j.Meta.Version)
	assert.Equal(t, domain.ModePage, j.Meta.PreviewMode)

	require.Len(t, j.Pages, 4, "checkout pages are added")
	assert.Equal(t, domain.TemplateQuote, j.Pages[1].Template)

	g := j.Pages[0].Groups[0]
	assert.True(t, g.Questions[0].Required)
	assert.Equal(t, domain.QuestionNumber, g.Questions[0].Type)

	conv := g.Questions[1]
	require.NotNil(t, conv.FollowUp)
	assert.Equal(t, 3, conv.FollowUp.Repeat.Max)
	assert.Equal(t, "Conviction", conv.FollowUp.Repeat.ItemLabel)
	assert.Equal(t, domain.OpGreaterEqual, conv.Logic.Rules[0].Operator)
	assert.EqualValues(t, 17, conv.Logic.Rules[0].Value)

	assert.Equal(t, "<p>Hello</p>", j.Pages[0].Flow[0].BodyHTML)
	assert.NotEmpty(t, issues)
}

func TestDecodeJSON(t *testing.T) {
	data := []byte(`{
		"lineOfBusiness": "pet",
		"meta": {"version": 1},
		"pages": [
			{"id": "p1", "template": "form",
			 "groups": [{"id": "g1", "questions": [{"id": "q1", "type": "hologram"}]}],
			 "flow": [{"type": "group", "id": "g1"}]},
			{"id": "quote", "template": "quote"},
			{"id": "summary", "template": "summary"},
			{"id": "payment", "template": "payment"}
		]
	}`)

	j, issues, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionText, j.Pages[0].Groups[0].Questions[0].Type)
	require.Len(t, issues, 1)
	assert.Equal(t, "q1", issues[0].QuestionID)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode([]byte(`{`), FormatJSON)
	assert.Error(t, err)

	_, _, err = Decode([]byte(``), FormatYAML)
	assert.Error(t, err)

	_, _, err = Decode([]byte(`{}`), "toml")
	assert.Error(t, err)

	_, _, err = Decode([]byte(`{"pages": "nope"}`), FormatJSON)
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	j, _, err := Decode([]byte(motorYAML), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		data, err := Encode(j, format)
		require.NoError(t, err)

		back, issues, err := Decode(data, format)
		require.NoError(t, err, string(format))
		assert.Empty(t, issues, string(format))
		assert.Equal(t, len(j.Pages), len(back.Pages))
		assert.Equal(t, j.Pages[0].Groups[0].Questions[1].FollowUp.Repeat, back.Pages[0].Groups[0].Questions[1].FollowUp.Repeat)
	}
}

func TestFormatFromPath(t *testing.T) {
	f, ok := FormatFromPath("journeys/motor.YML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	_, ok = FormatFromPath("notes.md")
	assert.False(t, ok)
}
