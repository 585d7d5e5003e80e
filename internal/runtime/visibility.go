package runtime

import "github.com/aretw0/journeys/pkg/domain"

// QuestionVisible reports whether q is shown for the given answers.
// Logic that is disabled or has no rules never hides anything; otherwise
// every rule must match.
func QuestionVisible(q *domain.Question, ix *Index, answers domain.Answers) bool {
	return questionVisibleIn(q, ix, answers, domain.AnswerKey{})
}

// GroupVisible reports whether g is shown for the given answers.
func GroupVisible(g *domain.Group, ix *Index, answers domain.Answers) bool {
	if !g.Logic.Active() {
		return true
	}
	owner, known := ix.GroupPosition(g.ID)
	return rulesMatch(g.Logic.Rules, owner, known, ix, func(id string) any {
		return answers.Value(domain.Key(id))
	})
}

// questionVisibleIn evaluates q inside a repeat instance. Rules that point
// at a sibling follow-up question read the answer of the same instance.
func questionVisibleIn(q *domain.Question, ix *Index, answers domain.Answers, scope domain.AnswerKey) bool {
	if !q.Logic.Active() {
		return true
	}
	owner, known := ix.Position(q.ID)
	return rulesMatch(q.Logic.Rules, owner, known, ix, func(id string) any {
		if scope.IsInstance() {
			if parent, ok := ix.ParentOf(id); ok && parent == scope.ParentID {
				return answers.Value(domain.InstanceKey(parent, id, scope.InstanceID))
			}
		}
		return answers.Value(domain.Key(id))
	})
}

func rulesMatch(rules []domain.Rule, owner int, ownerKnown bool, ix *Index, lookup func(string) any) bool {
	for _, r := range rules {
		target, ok := ix.Question(r.QuestionID)
		if !ok {
			return false
		}
		if ownerKnown {
			if pos, _ := ix.Position(r.QuestionID); pos >= owner {
				return false
			}
		}
		if !evaluate(r, lookup(r.QuestionID), target) {
			return false
		}
	}
	return true
}
