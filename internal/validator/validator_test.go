package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/pkg/domain"
)

func validJourney() *domain.Journey {
	return &domain.Journey{
		ID:             "home",
		LineOfBusiness: "home",
		Pages: []domain.Page{
			{
				ID: "about", Name: "About you", Template: domain.TemplateForm,
				Groups: []domain.Group{{
					ID: "g1",
					Questions: []domain.Question{
						{ID: "name", Type: domain.QuestionText, Required: true},
						{ID: "age", Type: domain.QuestionNumber},
						{
							ID: "claims", Type: domain.QuestionYesNo,
							Logic: domain.Logic{Enabled: true, Rules: []domain.Rule{
								{QuestionID: "age", Operator: domain.OpGreaterEqual, Value: "18"},
							}},
							FollowUp: &domain.FollowUp{
								Enabled: true, TriggerValue: "Yes",
								Questions: []domain.Question{{ID: "claimDate", Type: domain.QuestionDate}},
								Repeat:    domain.Repeat{Enabled: true, Min: 1, Max: 3},
							},
						},
					},
				}},
				Flow: []domain.FlowItem{{Type: domain.FlowGroup, ID: "g1"}},
			},
			{ID: "quote", Template: domain.TemplateQuote},
			{ID: "summary", Template: domain.TemplateSummary},
			{ID: "payment", Template: domain.TemplatePayment},
		},
	}
}

func TestLint_Clean(t *testing.T) {
	assert.Empty(t, Lint(validJourney()))
}

func TestLint_Findings(t *testing.T) {
	j := validJourney()
	qs := j.Pages[0].Groups[0].Questions
	qs[1].ID = "name"
	qs[0].Logic = domain.Logic{Enabled: true, Rules: []domain.Rule{
		{QuestionID: "claims", Operator: domain.OpEquals, Value: "Yes"},
		{QuestionID: "ghost", Operator: domain.OpEquals, Value: "x"},
		{QuestionID: "claims", Operator: "like"},
	}}
	qs[2].FollowUp.Repeat = domain.Repeat{Enabled: true, Min: 4, Max: 2}
	j.Pages[0].Flow = append(j.Pages[0].Flow, domain.FlowItem{Type: domain.FlowGroup, ID: "nowhere"})
	j.Pages = append(j.Pages, domain.Page{ID: "late", Template: domain.TemplateForm})

	issues := Lint(j)
	text := make([]string, len(issues))
	for i, issue := range issues {
		text[i] = issue.String()
	}
	joined := strings.Join(text, "\n")

	assert.Contains(t, joined, `duplicate question id "name"`)
	assert.Contains(t, joined, `does not come earlier`)
	assert.Contains(t, joined, `missing question "ghost"`)
	assert.Contains(t, joined, `unknown operator "like"`)
	assert.Contains(t, joined, `repeat bounds 4..2`)
	assert.Contains(t, joined, `flow references missing group`)
	assert.Contains(t, joined, `page follows checkout page payment`)
	assert.True(t, HasErrors(issues))
}

func TestLint_TextOperatorOnNumericQuestion(t *testing.T) {
	j := validJourney()
	j.Pages[0].Groups[0].Questions[2].Logic.Rules = []domain.Rule{
		{QuestionID: "age", Operator: domain.OpNotContains, Value: "1"},
	}

	issues := Lint(j)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].String(), `operator not_contains on number question "age" never matches`)
	assert.False(t, HasErrors(issues))
}

func TestNormalize_Flow(t *testing.T) {
	j := validJourney()
	p := &j.Pages[0]
	p.Groups = append(p.Groups, domain.Group{ID: "g2"})
	p.Flow = []domain.FlowItem{
		{Type: domain.FlowText, ID: "intro"},
		{Type: domain.FlowGroup, ID: "g1"},
		{Type: domain.FlowGroup, ID: "gone"},
		{Type: domain.FlowGroup, ID: "g1"},
		{Type: "video", ID: "v"},
	}

	issues := Normalize(j)

	assert.Equal(t, []domain.FlowItem{
		{Type: domain.FlowText, ID: "intro"},
		{Type: domain.FlowGroup, ID: "g1"},
		{Type: domain.FlowGroup, ID: "g2"},
	}, p.Flow)
	assert.Len(t, issues, 4)
	assert.Empty(t, Lint(j))
}

func TestNormalize_Questions(t *testing.T) {
	j := validJourney()
	qs := j.Pages[0].Groups[0].Questions
	qs[0].Type = "signature"
	qs[0].Options = []string{"a"}
	qs[1].FollowUp = &domain.FollowUp{Enabled: true}
	fu := qs[2].FollowUp
	fu.TriggerValue = "yes"
	fu.Repeat = domain.Repeat{Enabled: true}
	fu.Questions[0].FollowUp = &domain.FollowUp{Enabled: true}

	issues := Normalize(j)

	assert.Equal(t, domain.QuestionText, qs[0].Type)
	assert.Nil(t, qs[0].Options)
	assert.Nil(t, qs[1].FollowUp)
	assert.Equal(t, "Yes", fu.TriggerValue)
	assert.Equal(t, DefaultRepeatMin, fu.Repeat.Min)
	assert.Equal(t, DefaultRepeatMax, fu.Repeat.Max)
	assert.Nil(t, fu.Questions[0].FollowUp)
	assert.Len(t, Filter(issues, SeverityWarning), 4)
	assert.Empty(t, Lint(j))
}

func TestNormalize_RepeatClamp(t *testing.T) {
	j := validJourney()
	fu := j.Pages[0].Groups[0].Questions[2].FollowUp
	fu.Repeat = domain.Repeat{Enabled: true, Min: -2, Max: 80}

	Normalize(j)

	assert.Equal(t, 0, fu.Repeat.Min)
	assert.Equal(t, domain.MaxRepeatInstances, fu.Repeat.Max)
}

func TestNormalize_Checkout(t *testing.T) {
	j := &domain.Journey{
		ID: "pet",
		Pages: []domain.Page{
			{ID: "summary", Template: domain.TemplateSummary},
			{ID: "p1", Template: domain.TemplateForm},
			{ID: "quote", Template: "custom"},
			{ID: "p2"},
		},
	}

	Normalize(j)

	ids := make([]string, len(j.Pages))
	for i, p := range j.Pages {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"p1", "quote", "p2", "quote-page", "summary", "payment"}, ids)
	assert.Equal(t, domain.TemplateQuote, j.Pages[3].Template)
	assert.Equal(t, "Quote", j.Pages[3].Name)
	assert.Empty(t, Filter(Lint(j), SeverityError))
}

func TestCheck(t *testing.T) {
	_, err := Check(validJourney())
	require.NoError(t, err)

	j := validJourney()
	j.Pages[0].Groups[0].Questions[1].ID = "name"
	issues, err := Check(j)

	var issuesErr *IssuesError
	require.True(t, errors.As(err, &issuesErr))
	assert.Equal(t, "home", issuesErr.JourneyID)
	assert.Len(t, issuesErr.Issues, 1)
	assert.NotEmpty(t, issues)
	assert.Contains(t, err.Error(), "found 1 errors")
}
