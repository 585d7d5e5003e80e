package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/journeys/pkg/domain"
)

// DefaultItemLabel labels repeat instances whose follow-up has no itemLabel.
const DefaultItemLabel = "Item"

// Steps linearizes j for the given mode.
func Steps(j *domain.Journey, answers *domain.Answers, mode domain.PreviewMode, newID domain.IDGenerator) []domain.Step {
	if mode == domain.ModePage {
		return PageSteps(j)
	}
	return QuestionSteps(j, answers, newID)
}

// PageSteps returns one step per page in page order.
func PageSteps(j *domain.Journey) []domain.Step {
	if j == nil {
		return nil
	}
	steps := make([]domain.Step, 0, len(j.Pages))
	for i := range j.Pages {
		steps = append(steps, pageStep(&j.Pages[i]))
	}
	return steps
}

// QuestionSteps returns the visible questions of j in document order, with
// follow-up steps inserted right after their trigger question. Checkout
// pages contribute a single page step.
//
// Expanding a matched repeatable follow-up tops its instance list up to min,
// so answers may be modified.
func QuestionSteps(j *domain.Journey, answers *domain.Answers, newID domain.IDGenerator) []domain.Step {
	if j == nil {
		return nil
	}
	b := newFlow(j, answers, newID)
	var steps []domain.Step
	for i := range j.Pages {
		p := &j.Pages[i]
		if p.Template.IsCheckout() {
			steps = append(steps, pageStep(p))
			continue
		}
		steps = append(steps, b.pageFields(p)...)
	}
	return steps
}

// PageFields returns the visible question and follow-up steps of one page.
// Page-mode validation and rendering work on this list. Checkout pages have
// no fields.
func PageFields(j *domain.Journey, answers *domain.Answers, pageID string, newID domain.IDGenerator) []domain.Step {
	if j == nil {
		return nil
	}
	p, ok := j.Page(pageID)
	if !ok || p.Template.IsCheckout() {
		return nil
	}
	return newFlow(j, answers, newID).pageFields(p)
}

type flow struct {
	ix      *Index
	answers *domain.Answers
	newID   domain.IDGenerator
}

func newFlow(j *domain.Journey, answers *domain.Answers, newID domain.IDGenerator) *flow {
	if answers == nil {
		answers = &domain.Answers{}
	}
	if answers.Values == nil {
		*answers = domain.NewAnswers()
	}
	return &flow{ix: NewIndex(j), answers: answers, newID: newID}
}

func (b *flow) pageFields(p *domain.Page) []domain.Step {
	var steps []domain.Step
	for _, g := range FlowGroups(p) {
		if !GroupVisible(g, b.ix, *b.answers) {
			continue
		}
		for qi := range g.Questions {
			q := &g.Questions[qi]
			if !QuestionVisible(q, b.ix, *b.answers) {
				continue
			}
			steps = append(steps, questionStep(p, g, q, domain.Key(q.ID)))
			steps = append(steps, b.followUps(p, g, q)...)
		}
	}
	return steps
}

func (b *flow) followUps(p *domain.Page, g *domain.Group, parent *domain.Question) []domain.Step {
	if !TriggerMatches(parent, *b.answers) {
		return nil
	}
	fu := parent.FollowUp

	if !fu.Repeat.Enabled {
		var steps []domain.Step
		for i := range fu.Questions {
			fq := &fu.Questions[i]
			if !QuestionVisible(fq, b.ix, *b.answers) {
				continue
			}
			s := questionStep(p, g, fq, domain.Key(fq.ID))
			s.ParentQuestionID = parent.ID
			steps = append(steps, s)
		}
		return steps
	}

	label := strings.TrimSpace(fu.Repeat.ItemLabel)
	if label == "" {
		label = DefaultItemLabel
	}

	var steps []domain.Step
	for idx, instanceID := range EnsureMinInstances(parent, b.answers, b.newID) {
		for i := range fu.Questions {
			fq := &fu.Questions[i]
			key := domain.InstanceKey(parent.ID, fq.ID, instanceID)
			if !questionVisibleIn(fq, b.ix, *b.answers, key) {
				continue
			}
			s := questionStep(p, g, fq, key)
			s.ParentQuestionID = parent.ID
			s.InstanceID = instanceID
			s.InstanceIndex = idx
			s.InstanceLabel = fmt.Sprintf("%s %d", label, idx+1)
			steps = append(steps, s)
		}
	}
	return steps
}

func pageStep(p *domain.Page) domain.Step {
	return domain.Step{
		ID:            p.ID,
		Kind:          domain.StepPage,
		PageID:        p.ID,
		PageName:      p.Name,
		Template:      p.Template,
		InstanceIndex: domain.NoInstance,
	}
}

func questionStep(p *domain.Page, g *domain.Group, q *domain.Question, key domain.AnswerKey) domain.Step {
	return domain.Step{
		ID:            key.String(),
		Key:           key,
		Kind:          domain.StepQuestion,
		PageID:        p.ID,
		PageName:      p.Name,
		Template:      p.Template,
		GroupID:       g.ID,
		GroupName:     g.Name,
		Question:      q,
		InstanceIndex: domain.NoInstance,
	}
}
