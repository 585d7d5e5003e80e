package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/pkg/domain"
)

// Lint reports problems in j without modifying it.
func Lint(j *domain.Journey) []Issue {
	l := &linter{
		ix:        runtime.NewIndex(j),
		pages:     make(map[string]bool),
		groups:    make(map[string]bool),
		questions: make(map[string]bool),
	}
	if j == nil {
		return nil
	}

	l.checkout(j)
	for pi := range j.Pages {
		p := &j.Pages[pi]
		l.unique(l.pages, p.ID, Issue{PageID: p.ID}, "page")
		l.flow(p)
		for gi := range p.Groups {
			g := &p.Groups[gi]
			l.unique(l.groups, g.ID, Issue{PageID: p.ID, GroupID: g.ID}, "group")
			if g.Logic.Active() {
				owner, _ := l.ix.GroupPosition(g.ID)
				l.rules(g.Logic.Rules, owner, Issue{PageID: p.ID, GroupID: g.ID})
			}
			for qi := range g.Questions {
				l.question(p, g, &g.Questions[qi], false)
			}
		}
	}
	return l.issues
}

// Check normalizes j and returns an *IssuesError when error-severity
// problems remain. All issues are returned either way.
func Check(j *domain.Journey) ([]Issue, error) {
	issues := append(Normalize(j), Lint(j)...)
	if errs := Filter(issues, SeverityError); len(errs) > 0 {
		id := ""
		if j != nil {
			id = j.ID
		}
		return issues, &IssuesError{JourneyID: id, Issues: errs}
	}
	return issues, nil
}

type linter struct {
	ix        *runtime.Index
	pages     map[string]bool
	groups    map[string]bool
	questions map[string]bool
	issues    []Issue
}

func (l *linter) add(sev Severity, at Issue, format string, args ...any) {
	at.Severity = sev
	at.Message = fmt.Sprintf(format, args...)
	l.issues = append(l.issues, at)
}

func (l *linter) unique(seen map[string]bool, id string, at Issue, kind string) {
	if strings.TrimSpace(id) == "" {
		l.add(SeverityError, at, "%s has no id", kind)
		return
	}
	if seen[id] {
		l.add(SeverityError, at, "duplicate %s id %q", kind, id)
		return
	}
	seen[id] = true
}

func (l *linter) checkout(j *domain.Journey) {
	var tail []domain.Template
	for i, p := range j.Pages {
		if !p.Template.IsCheckout() {
			if len(tail) > 0 {
				l.add(SeverityError, Issue{PageID: p.ID}, "page follows checkout page %s", j.Pages[i-1].ID)
			}
			continue
		}
		tail = append(tail, p.Template)
	}
	for _, t := range domain.CheckoutTemplates {
		count := 0
		for _, got := range tail {
			if got == t {
				count++
			}
		}
		switch {
		case count == 0:
			l.add(SeverityError, Issue{}, "missing %s page", t)
		case count > 1:
			l.add(SeverityWarning, Issue{}, "%d %s pages", count, t)
		}
	}
	if len(tail) == len(domain.CheckoutTemplates) {
		for i, t := range domain.CheckoutTemplates {
			if tail[i] != t {
				l.add(SeverityError, Issue{}, "checkout pages out of order: %v", tail)
				break
			}
		}
	}
}

func (l *linter) flow(p *domain.Page) {
	seen := make(map[string]bool)
	for _, item := range p.Flow {
		if item.Type != domain.FlowGroup {
			continue
		}
		if _, ok := p.Group(item.ID); !ok {
			l.add(SeverityWarning, Issue{PageID: p.ID, GroupID: item.ID}, "flow references missing group")
		} else if seen[item.ID] {
			l.add(SeverityWarning, Issue{PageID: p.ID, GroupID: item.ID}, "group listed twice in flow")
		}
		seen[item.ID] = true
	}
	for _, g := range p.Groups {
		if !seen[g.ID] {
			l.add(SeverityWarning, Issue{PageID: p.ID, GroupID: g.ID}, "group is not in the page flow and will not render")
		}
	}
}

func (l *linter) question(p *domain.Page, g *domain.Group, q *domain.Question, inFollowUp bool) {
	at := Issue{PageID: p.ID, GroupID: g.ID, QuestionID: q.ID}
	l.unique(l.questions, q.ID, at, "question")

	if !q.Type.Known() {
		l.add(SeverityError, at, "unknown question type %q", q.Type)
	}
	if q.Type.HasOptions() && len(q.Options) == 0 {
		l.add(SeverityWarning, at, "%s question has no options", q.Type)
	}
	if q.Required && !q.Type.Interactive() {
		l.add(SeverityWarning, at, "display question marked required")
	}
	if q.Logic.Active() {
		if owner, ok := l.ix.Position(q.ID); ok {
			l.rules(q.Logic.Rules, owner, at)
		}
	}

	if q.FollowUp == nil {
		return
	}
	fu := q.FollowUp
	switch {
	case inFollowUp:
		l.add(SeverityError, at, "follow-up questions cannot have their own follow-up")
		return
	case q.Type != domain.QuestionYesNo:
		l.add(SeverityWarning, at, "follow-up on a %s question is ignored", q.Type)
		return
	}
	if fu.TriggerValue != "Yes" && fu.TriggerValue != "No" {
		l.add(SeverityError, at, "trigger value %q is neither Yes nor No", fu.TriggerValue)
	}
	if fu.Repeat.Enabled {
		r := fu.Repeat
		if r.Min < 0 || r.Max < r.Min || r.Max > domain.MaxRepeatInstances {
			l.add(SeverityError, at, "repeat bounds %d..%d outside 0 <= min <= max <= %d", r.Min, r.Max, domain.MaxRepeatInstances)
		}
	}
	if fu.Enabled && len(fu.Questions) == 0 {
		l.add(SeverityWarning, at, "enabled follow-up has no questions")
	}
	for i := range fu.Questions {
		l.question(p, g, &fu.Questions[i], true)
	}
}

func (l *linter) rules(rules []domain.Rule, owner int, at Issue) {
	for _, r := range rules {
		if !r.Operator.Known() {
			l.add(SeverityError, at, "unknown operator %q", r.Operator)
			continue
		}
		target, ok := l.ix.Question(r.QuestionID)
		if !ok {
			l.add(SeverityWarning, at, "rule references missing question %q and never matches", r.QuestionID)
			continue
		}
		if pos, _ := l.ix.Position(r.QuestionID); pos >= owner {
			l.add(SeverityWarning, at, "rule references question %q that does not come earlier and never matches", r.QuestionID)
			continue
		}
		if !target.Type.Interactive() {
			l.add(SeverityWarning, at, "rule references display question %q", r.QuestionID)
		}
		if target.Type.IsNumeric() && (r.Operator == domain.OpContains || r.Operator == domain.OpNotContains) {
			l.add(SeverityWarning, at, "operator %s on %s question %q never matches", r.Operator, target.Type, r.QuestionID)
		}
		if r.Operator.IsOrdering() && !numeric(r.Value) {
			l.add(SeverityWarning, at, "operator %s needs a numeric value, got %v", r.Operator, r.Value)
		}
	}
}

func numeric(v any) bool {
	switch t := v.(type) {
	case int, int64, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	}
	return false
}
