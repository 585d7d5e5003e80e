package runtime_test

import (
	"fmt"

	"github.com/aretw0/journeys/pkg/domain"
)

func seqIDs() domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("i%d", n)
	}
}

func q(id string, t domain.QuestionType) domain.Question {
	return domain.Question{ID: id, Type: t, Title: id}
}

func required(question domain.Question) domain.Question {
	question.Required = true
	return question
}

func when(question domain.Question, rules ...domain.Rule) domain.Question {
	question.Logic = domain.Logic{Enabled: true, Rules: rules}
	return question
}

func rule(target string, op domain.Operator, value any) domain.Rule {
	return domain.Rule{QuestionID: target, Operator: op, Value: value}
}

func group(id string, questions ...domain.Question) domain.Group {
	return domain.Group{ID: id, Name: id, Questions: questions}
}

func page(id string, groups ...domain.Group) domain.Page {
	p := domain.Page{ID: id, Name: id, Template: domain.TemplateForm, Groups: groups}
	for _, g := range groups {
		p.Flow = append(p.Flow, domain.FlowItem{Type: domain.FlowGroup, ID: g.ID})
	}
	return p
}

func checkout(t domain.Template) domain.Page {
	return domain.Page{ID: string(t), Name: string(t), Template: t}
}

func journey(pages ...domain.Page) *domain.Journey {
	return &domain.Journey{ID: "test", LineOfBusiness: "motor", Meta: domain.Meta{Version: 1}, Pages: pages}
}

// withFollowUp turns question into a yesno parent of the given follow-ups.
func withFollowUp(id string, repeat domain.Repeat, followUps ...domain.Question) domain.Question {
	parent := q(id, domain.QuestionYesNo)
	parent.FollowUp = &domain.FollowUp{
		Enabled:      true,
		TriggerValue: "Yes",
		Questions:    followUps,
		Repeat:       repeat,
	}
	return parent
}

func stepIDs(steps []domain.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}

func answersOf(values map[string]any) domain.Answers {
	a := domain.NewAnswers()
	for k, v := range values {
		a.Set(domain.Key(k), v)
	}
	return a
}
