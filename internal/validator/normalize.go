package validator

import (
	"fmt"
	"slices"

	"github.com/aretw0/journeys/pkg/domain"
)

// Default bounds of a repeat that was enabled without any.
const (
	DefaultRepeatMin = 1
	DefaultRepeatMax = 5
)

var checkoutNames = map[domain.Template]string{
	domain.TemplateQuote:   "Quote",
	domain.TemplateSummary: "Summary",
	domain.TemplatePayment: "Payment",
}

// Normalize repairs j in place so every invariant the engine relies on
// holds, and reports what it changed. It never fails: inconsistent
// documents are the normal case while a journey is being edited.
func Normalize(j *domain.Journey) []Issue {
	var issues []Issue
	if j == nil {
		return issues
	}

	if j.Meta.PreviewMode != "" && !j.Meta.PreviewMode.Valid() {
		issues = append(issues, Issue{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("unknown preview mode %q dropped", j.Meta.PreviewMode),
		})
		j.Meta.PreviewMode = ""
	}

	for pi := range j.Pages {
		p := &j.Pages[pi]
		issues = append(issues, normalizeFlow(p)...)
		for gi := range p.Groups {
			g := &p.Groups[gi]
			for qi := range g.Questions {
				issues = append(issues, normalizeQuestion(p, g, &g.Questions[qi], false)...)
			}
		}
	}

	issues = append(issues, normalizeCheckout(j)...)
	return issues
}

func normalizeFlow(p *domain.Page) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(p.Flow))
	flow := p.Flow[:0:0]

	for _, item := range p.Flow {
		switch item.Type {
		case domain.FlowGroup:
			if _, ok := p.Group(item.ID); !ok {
				issues = append(issues, Issue{
					Severity: SeverityInfo, PageID: p.ID, GroupID: item.ID,
					Message: "flow reference to missing group pruned",
				})
				continue
			}
			if seen[item.ID] {
				issues = append(issues, Issue{
					Severity: SeverityInfo, PageID: p.ID, GroupID: item.ID,
					Message: "duplicate flow reference dropped",
				})
				continue
			}
			seen[item.ID] = true
		case domain.FlowText:
		default:
			issues = append(issues, Issue{
				Severity: SeverityInfo, PageID: p.ID,
				Message: fmt.Sprintf("flow item %q of unknown type %q dropped", item.ID, item.Type),
			})
			continue
		}
		flow = append(flow, item)
	}

	for _, g := range p.Groups {
		if !seen[g.ID] {
			seen[g.ID] = true
			flow = append(flow, domain.FlowItem{Type: domain.FlowGroup, ID: g.ID})
			issues = append(issues, Issue{
				Severity: SeverityInfo, PageID: p.ID, GroupID: g.ID,
				Message: "group missing from flow appended",
			})
		}
	}

	p.Flow = flow
	return issues
}

func normalizeQuestion(p *domain.Page, g *domain.Group, q *domain.Question, inFollowUp bool) []Issue {
	var issues []Issue
	at := func(sev Severity, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: sev, PageID: p.ID, GroupID: g.ID, QuestionID: q.ID,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if t, ok := domain.ParseQuestionType(string(q.Type)); !ok {
		at(SeverityWarning, "unknown type %q treated as %s", q.Type, t)
		q.Type = t
	}

	if !q.Type.HasOptions() && len(q.Options) > 0 {
		q.Options = nil
		at(SeverityInfo, "options cleared on %s question", q.Type)
	}

	if q.FollowUp == nil {
		return issues
	}
	switch {
	case inFollowUp:
		q.FollowUp = nil
		at(SeverityWarning, "nested follow-up removed")
		return issues
	case q.Type != domain.QuestionYesNo:
		q.FollowUp = nil
		at(SeverityWarning, "follow-up removed from %s question", q.Type)
		return issues
	}

	fu := q.FollowUp
	if !slices.Contains(domain.YesNoOptions, fu.TriggerValue) {
		at(SeverityWarning, "trigger value %q replaced with %q", fu.TriggerValue, domain.YesNoOptions[0])
		fu.TriggerValue = domain.YesNoOptions[0]
	}

	r := &fu.Repeat
	if r.Enabled && r.Min == 0 && r.Max == 0 {
		r.Min, r.Max = DefaultRepeatMin, DefaultRepeatMax
		at(SeverityInfo, "repeat bounds defaulted to %d..%d", r.Min, r.Max)
	}
	if minN, maxN := r.Bounds(); minN != r.Min || maxN != r.Max {
		at(SeverityWarning, "repeat bounds %d..%d clamped to %d..%d", r.Min, r.Max, minN, maxN)
		r.Min, r.Max = minN, maxN
	}

	for i := range fu.Questions {
		issues = append(issues, normalizeQuestion(p, g, &fu.Questions[i], true)...)
	}
	return issues
}

// normalizeCheckout moves checkout pages behind every other page in their
// fixed order and creates the ones that are missing.
func normalizeCheckout(j *domain.Journey) []Issue {
	var issues []Issue
	pages := make([]domain.Page, 0, len(j.Pages)+len(domain.CheckoutTemplates))
	byTemplate := make(map[domain.Template][]domain.Page)

	for _, p := range j.Pages {
		if p.Template.IsCheckout() {
			byTemplate[p.Template] = append(byTemplate[p.Template], p)
			continue
		}
		pages = append(pages, p)
	}
	forms := len(pages)

	ids := make(map[string]bool, len(j.Pages))
	for _, p := range j.Pages {
		ids[p.ID] = true
	}

	for _, t := range domain.CheckoutTemplates {
		found := byTemplate[t]
		if len(found) == 0 {
			id := string(t)
			for ids[id] {
				id += "-page"
			}
			ids[id] = true
			pages = append(pages, domain.Page{ID: id, Name: checkoutNames[t], Template: t})
			issues = append(issues, Issue{
				Severity: SeverityInfo, PageID: id,
				Message: fmt.Sprintf("missing %s page added", t),
			})
			continue
		}
		if len(found) > 1 {
			issues = append(issues, Issue{
				Severity: SeverityWarning, PageID: found[1].ID,
				Message: fmt.Sprintf("journey has %d %s pages", len(found), t),
			})
		}
		pages = append(pages, found...)
	}

	moved := false
	for i := range j.Pages {
		if i < len(pages) && pages[i].ID != j.Pages[i].ID {
			moved = true
			break
		}
	}
	if moved && forms < len(j.Pages) {
		issues = append(issues, Issue{
			Severity: SeverityInfo,
			Message:  "checkout pages moved to the end",
		})
	}

	j.Pages = pages
	return issues
}
