package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/pkg/domain"
)

func TestQuestionSteps_DocumentOrder(t *testing.T) {
	j := journey(
		page("P1", group("G1", q("q1", domain.QuestionText), q("q2", domain.QuestionText))),
		page("P2", group("G2", q("q3", domain.QuestionText))),
	)
	answers := domain.NewAnswers()

	steps := runtime.QuestionSteps(j, &answers, seqIDs())

	assert.Equal(t, []string{"q1", "q2", "q3"}, stepIDs(steps))
	assert.Equal(t, "P1", steps[1].PageID)
	assert.Equal(t, "G1", steps[1].GroupID)
	assert.Equal(t, domain.NoInstance, steps[0].InstanceIndex)
}

func TestQuestionSteps_FollowUpInsertion(t *testing.T) {
	j := journey(
		page("P1", group("G1",
			q("q1", domain.QuestionText),
			withFollowUp("q2", domain.Repeat{}, q("fq1", domain.QuestionText)),
		)),
		page("P2", group("G2", q("q3", domain.QuestionText))),
	)

	answers := answersOf(map[string]any{"q2": "Yes"})
	steps := runtime.QuestionSteps(j, &answers, seqIDs())
	require.Equal(t, []string{"q1", "q2", "fq1", "q3"}, stepIDs(steps))
	assert.Equal(t, "q2", steps[2].ParentQuestionID)
	assert.Equal(t, domain.Key("fq1"), steps[2].Key)
	assert.Empty(t, steps[2].InstanceLabel)

	answers = answersOf(map[string]any{"q2": "No"})
	steps = runtime.QuestionSteps(j, &answers, seqIDs())
	assert.Equal(t, []string{"q1", "q2", "q3"}, stepIDs(steps))

	// Trigger matching is exact.
	answers = answersOf(map[string]any{"q2": "yes"})
	steps = runtime.QuestionSteps(j, &answers, seqIDs())
	assert.Equal(t, []string{"q1", "q2", "q3"}, stepIDs(steps))
}

func TestQuestionSteps_RepeatExpansion(t *testing.T) {
	repeat := domain.Repeat{Enabled: true, Min: 2, Max: 4, ItemLabel: "Driver"}
	j := journey(page("P1", group("G1",
		withFollowUp("drivers", repeat, q("name", domain.QuestionText), q("age", domain.QuestionNumber)),
		q("after", domain.QuestionText),
	)))

	answers := answersOf(map[string]any{"drivers": "Yes"})
	steps := runtime.QuestionSteps(j, &answers, seqIDs())

	assert.Equal(t, []string{
		"drivers",
		"drivers/name/i1", "drivers/age/i1",
		"drivers/name/i2", "drivers/age/i2",
		"after",
	}, stepIDs(steps))
	assert.Equal(t, []string{"i1", "i2"}, answers.InstanceIDs("drivers"))

	assert.Equal(t, 0, steps[1].InstanceIndex)
	assert.Equal(t, "Driver 1", steps[1].InstanceLabel)
	assert.Equal(t, 1, steps[3].InstanceIndex)
	assert.Equal(t, "Driver 2", steps[4].InstanceLabel)
	assert.Equal(t, domain.InstanceKey("drivers", "age", "i2"), steps[4].Key)
}

func TestQuestionSteps_RepeatDefaultLabel(t *testing.T) {
	j := journey(page("P1", group("G1",
		withFollowUp("claims", domain.Repeat{Enabled: true, Min: 1, Max: 2}, q("when", domain.QuestionDate)),
	)))
	answers := answersOf(map[string]any{"claims": "Yes"})

	steps := runtime.QuestionSteps(j, &answers, seqIDs())

	require.Len(t, steps, 2)
	assert.Equal(t, "Item 1", steps[1].InstanceLabel)
}

func TestQuestionSteps_InstanceScopedRules(t *testing.T) {
	j := journey(page("P1", group("G1",
		withFollowUp("drivers", domain.Repeat{Enabled: true, Min: 2, Max: 2},
			q("hasPoints", domain.QuestionYesNo),
			when(q("points", domain.QuestionNumber), rule("hasPoints", domain.OpEquals, "Yes")),
		),
	)))
	answers := answersOf(map[string]any{"drivers": "Yes"})
	answers.SetInstanceIDs("drivers", []string{"a", "b"})
	answers.Set(domain.InstanceKey("drivers", "hasPoints", "b"), "Yes")

	steps := runtime.QuestionSteps(j, &answers, seqIDs())

	assert.Equal(t, []string{
		"drivers",
		"drivers/hasPoints/a",
		"drivers/hasPoints/b", "drivers/points/b",
	}, stepIDs(steps))
}

func TestQuestionSteps_HiddenItemsSkipped(t *testing.T) {
	hidden := group("G2", q("never", domain.QuestionText))
	hidden.Logic = domain.Logic{Enabled: true, Rules: []domain.Rule{rule("q1", domain.OpEquals, "show")}}

	j := journey(page("P1",
		group("G1",
			q("q1", domain.QuestionText),
			when(q("q2", domain.QuestionText), rule("q1", domain.OpIsAnswered, nil)),
		),
		hidden,
	))
	answers := domain.NewAnswers()

	steps := runtime.QuestionSteps(j, &answers, seqIDs())
	assert.Equal(t, []string{"q1"}, stepIDs(steps))

	answers = answersOf(map[string]any{"q1": "show"})
	steps = runtime.QuestionSteps(j, &answers, seqIDs())
	assert.Equal(t, []string{"q1", "q2", "never"}, stepIDs(steps))
}

func TestQuestionSteps_FlowOrderAndDanglingReferences(t *testing.T) {
	p := page("P1", group("G1", q("a", domain.QuestionText)), group("G2", q("b", domain.QuestionText)))
	p.Flow = []domain.FlowItem{
		{Type: domain.FlowText, ID: "intro", Title: "Welcome", BodyHTML: "<p>Hi</p>"},
		{Type: domain.FlowGroup, ID: "G2"},
		{Type: domain.FlowGroup, ID: "deleted"},
		{Type: domain.FlowGroup, ID: "G1"},
		{Type: domain.FlowGroup, ID: "G2"},
	}
	j := journey(p)
	answers := domain.NewAnswers()

	var steps []domain.Step
	assert.NotPanics(t, func() {
		steps = runtime.QuestionSteps(j, &answers, seqIDs())
	})
	assert.Equal(t, []string{"b", "a"}, stepIDs(steps))
}

func TestSteps_CheckoutUniformity(t *testing.T) {
	quote := checkout(domain.TemplateQuote)
	quote.Groups = []domain.Group{group("premium", q("price", domain.QuestionDisplay))}
	quote.Flow = []domain.FlowItem{{Type: domain.FlowGroup, ID: "premium"}}

	j := journey(
		page("P1", group("G1", q("q1", domain.QuestionText))),
		quote,
		checkout(domain.TemplateSummary),
		checkout(domain.TemplatePayment),
	)
	answers := domain.NewAnswers()

	questionSteps := runtime.QuestionSteps(j, &answers, seqIDs())
	pageSteps := runtime.PageSteps(j)

	var fromQuestions, fromPages []domain.Step
	for _, s := range questionSteps {
		if s.PageID == "quote" {
			fromQuestions = append(fromQuestions, s)
		}
	}
	for _, s := range pageSteps {
		if s.PageID == "quote" {
			fromPages = append(fromPages, s)
		}
	}
	require.Len(t, fromQuestions, 1)
	require.Len(t, fromPages, 1)
	assert.Equal(t, fromPages[0], fromQuestions[0])
	assert.Equal(t, domain.StepPage, fromQuestions[0].Kind)

	assert.Equal(t, []string{"q1", "quote", "summary", "payment"}, stepIDs(questionSteps))
	assert.Equal(t, []string{"P1", "quote", "summary", "payment"}, stepIDs(pageSteps))
}

func TestSteps_DanglingRuleDoesNotBreakBuild(t *testing.T) {
	j := journey(page("P1", group("G1",
		q("q1", domain.QuestionText),
		when(q("q2", domain.QuestionText), rule("removed", domain.OpEquals, "x")),
	)))
	answers := answersOf(map[string]any{"removed": "x"})

	var steps []domain.Step
	assert.NotPanics(t, func() {
		steps = runtime.Steps(j, &answers, domain.ModeQuestion, seqIDs())
	})
	assert.Equal(t, []string{"q1"}, stepIDs(steps))
}

func TestSteps_EmptyJourney(t *testing.T) {
	answers := domain.NewAnswers()
	assert.Empty(t, runtime.Steps(journey(), &answers, domain.ModeQuestion, nil))
	assert.Empty(t, runtime.Steps(journey(), &answers, domain.ModePage, nil))
	assert.Empty(t, runtime.Steps(nil, &answers, domain.ModeQuestion, nil))
}

func TestPageFields(t *testing.T) {
	j := journey(
		page("P1", group("G1",
			required(q("a", domain.QuestionText)),
			withFollowUp("b", domain.Repeat{}, required(q("b1", domain.QuestionText))),
		)),
		page("P2", group("G2", q("c", domain.QuestionText))),
		checkout(domain.TemplateQuote),
	)
	answers := answersOf(map[string]any{"b": "Yes"})

	assert.Equal(t, []string{"a", "b", "b1"}, stepIDs(runtime.PageFields(j, &answers, "P1", seqIDs())))
	assert.Equal(t, []string{"c"}, stepIDs(runtime.PageFields(j, &answers, "P2", seqIDs())))
	assert.Empty(t, runtime.PageFields(j, &answers, "quote", seqIDs()))
	assert.Empty(t, runtime.PageFields(j, &answers, "missing", seqIDs()))
}
