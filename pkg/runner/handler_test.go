package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/pkg/domain"
)

func questionView() *View {
	state := domain.NewState("s1", "motor", domain.ModeQuestion)
	state.LastError = "Tell us your age."
	step := domain.Step{
		ID: "age", Key: domain.Key("age"), Kind: domain.StepQuestion,
		PageID: "driver", PageName: "Driver", GroupName: "About you",
		Question: &domain.Question{ID: "age", Type: domain.QuestionNumber, Title: "Age", Required: true, Help: "In years"},
	}
	return &View{State: state, Current: &step, Fields: []domain.Step{step}, Position: 1, Total: 4}
}

func TestMarkdown_Question(t *testing.T) {
	md := Markdown(questionView())

	assert.Contains(t, md, "## Driver")
	assert.Contains(t, md, "_Step 1 of 4_")
	assert.Contains(t, md, "### About you")
	assert.Contains(t, md, "**Age *** `age`")
	assert.Contains(t, md, "In years")
	assert.Contains(t, md, "> **Tell us your age.**")
}

func TestMarkdown_Page(t *testing.T) {
	state := domain.NewState("s1", "motor", domain.ModePage)
	state.Answers.Set(domain.Key("cover"), "Basic")
	state.PageErrors[domain.Key("age")] = "Required"

	fields := []domain.Step{
		{ID: "age", Key: domain.Key("age"), GroupName: "About you", Question: &domain.Question{ID: "age", Type: domain.QuestionNumber, Title: "Age"}},
		{ID: "cover", Key: domain.Key("cover"), GroupName: "Cover", Question: &domain.Question{ID: "cover", Type: domain.QuestionSelect, Title: "Cover", Options: []string{"Basic", "Full"}}},
	}
	page := domain.Step{ID: "driver", Kind: domain.StepPage, PageID: "driver", Template: domain.TemplateForm}
	md := Markdown(&View{State: state, Current: &page, Fields: fields, Position: 1, Total: 4})

	assert.Contains(t, md, "## driver")
	assert.Contains(t, md, "**1. Age** `age`")
	assert.Contains(t, md, "> **Required**")
	assert.Contains(t, md, "2. Full")
	assert.Contains(t, md, "Current answer: `Basic`")
}

func TestTextHandler_Show(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	require.NoError(t, h.Show(context.Background(), questionView()))
	assert.True(t, strings.HasPrefix(out.String(), "Rendered: ## Driver"))
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  first \nsec\x07ond\n"), out)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", val)

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	h := NewTextHandler(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader("\"34\"\nplain"), out)

	require.NoError(t, h.Show(context.Background(), questionView()))
	require.NoError(t, h.SystemOutput(context.Background(), "hello"))

	dec := json.NewDecoder(out)
	var msg map[string]any
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, "view", msg["type"])
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, "hello", msg["message"])

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "34", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "plain", val)

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestView_RepeatParent(t *testing.T) {
	parent := &domain.Question{ID: "claims", Type: domain.QuestionYesNo, FollowUp: &domain.FollowUp{Enabled: true, Repeat: domain.Repeat{Enabled: true}}}

	v := &View{Current: &domain.Step{Kind: domain.StepQuestion, Key: domain.Key("claims"), Question: parent}}
	assert.Equal(t, "claims", v.RepeatParent())

	v = &View{Current: &domain.Step{Kind: domain.StepQuestion, ParentQuestionID: "claims", InstanceID: "i1", Question: &domain.Question{}}}
	assert.Equal(t, "claims", v.RepeatParent())

	v = &View{Current: &domain.Step{Kind: domain.StepQuestion, Key: domain.Key("name"), Question: &domain.Question{}}}
	assert.Equal(t, "", v.RepeatParent())

	page := &domain.Step{Kind: domain.StepPage}
	v = &View{Current: page, Fields: []domain.Step{{Key: domain.Key("name"), Question: &domain.Question{}}, {Key: domain.Key("claims"), Question: parent}}}
	assert.Equal(t, "claims", v.RepeatParent())

	f, ok := v.Field("2")
	require.True(t, ok)
	assert.Equal(t, "claims", f.Key.QuestionID)
}
