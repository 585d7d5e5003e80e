package runtime

import "github.com/aretw0/journeys/pkg/domain"

// Index is the id lookup table built once per rebuild. Positions follow
// document order: pages, then groups in flow order, then questions, with
// follow-up questions placed right after their parent.
type Index struct {
	questions map[string]indexedQuestion
	groups    map[string]int
	count     int
}

type indexedQuestion struct {
	question *domain.Question
	pos      int
	parentID string
}

// NewIndex flattens j. The first occurrence of a duplicated id wins.
func NewIndex(j *domain.Journey) *Index {
	ix := &Index{
		questions: make(map[string]indexedQuestion),
		groups:    make(map[string]int),
	}
	if j == nil {
		return ix
	}
	for pi := range j.Pages {
		for _, g := range indexOrder(&j.Pages[pi]) {
			if _, dup := ix.groups[g.ID]; !dup {
				ix.groups[g.ID] = ix.count
			}
			for qi := range g.Questions {
				ix.add(&g.Questions[qi], "")
			}
		}
	}
	return ix
}

func (ix *Index) add(q *domain.Question, parentID string) {
	if _, dup := ix.questions[q.ID]; !dup && q.ID != "" {
		ix.questions[q.ID] = indexedQuestion{question: q, pos: ix.count, parentID: parentID}
	}
	ix.count++
	if q.FollowUp == nil || parentID != "" {
		return
	}
	for i := range q.FollowUp.Questions {
		ix.add(&q.FollowUp.Questions[i], q.ID)
	}
}

// Question returns the question with the given id, follow-ups included.
func (ix *Index) Question(id string) (*domain.Question, bool) {
	e, ok := ix.questions[id]
	return e.question, ok
}

// Position returns the document-order position of a question.
func (ix *Index) Position(id string) (int, bool) {
	e, ok := ix.questions[id]
	return e.pos, ok
}

// GroupPosition returns the number of questions that precede the group.
func (ix *Index) GroupPosition(id string) (int, bool) {
	pos, ok := ix.groups[id]
	return pos, ok
}

// ParentOf returns the parent question id of a follow-up question.
func (ix *Index) ParentOf(id string) (string, bool) {
	e, ok := ix.questions[id]
	if !ok || e.parentID == "" {
		return "", false
	}
	return e.parentID, true
}

// Len returns the number of indexed questions.
func (ix *Index) Len() int {
	return len(ix.questions)
}

// FlowGroups returns the groups of p in flow order. Dangling references are
// skipped and a group referenced twice is returned once.
func FlowGroups(p *domain.Page) []*domain.Group {
	seen := make(map[string]bool, len(p.Flow))
	out := make([]*domain.Group, 0, len(p.Groups))
	for _, item := range p.Flow {
		if item.Type != domain.FlowGroup || seen[item.ID] {
			continue
		}
		g, ok := p.Group(item.ID)
		if !ok {
			continue
		}
		seen[item.ID] = true
		out = append(out, g)
	}
	return out
}

// indexOrder is FlowGroups followed by any group missing from the flow, so
// rules can still resolve their targets.
func indexOrder(p *domain.Page) []*domain.Group {
	out := FlowGroups(p)
	listed := make(map[*domain.Group]bool, len(out))
	for _, g := range out {
		listed[g] = true
	}
	for i := range p.Groups {
		if !listed[&p.Groups[i]] {
			out = append(out, &p.Groups[i])
		}
	}
	return out
}
