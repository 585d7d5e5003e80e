// Package richtext sanitizes the HTML fragments that journeys carry in
// flow text blocks, question content and group descriptions.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aretw0/journeys/pkg/domain"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()

	blockEnd   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr)>|<br\s*/?>`)
	whitespace = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Sanitize keeps the markup an editor can produce and strips everything
// else (scripts, event handlers, unsafe URLs).
func Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}
	return ugc.Sanitize(fragment)
}

// PlainText renders a fragment as text for terminals: tags are dropped,
// block ends become line breaks and entities are decoded.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	s := blockEnd.ReplaceAllString(fragment, "\n")
	s = html.UnescapeString(strict.Sanitize(s))
	s = whitespace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

// SanitizeJourney sanitizes every HTML field of j in place.
func SanitizeJourney(j *domain.Journey) {
	if j == nil {
		return
	}
	for pi := range j.Pages {
		p := &j.Pages[pi]
		for fi := range p.Flow {
			p.Flow[fi].BodyHTML = Sanitize(p.Flow[fi].BodyHTML)
		}
		for gi := range p.Groups {
			g := &p.Groups[gi]
			g.Description.HTML = Sanitize(g.Description.HTML)
			sanitizeQuestions(g.Questions)
		}
	}
}

func sanitizeQuestions(qs []domain.Question) {
	for i := range qs {
		qs[i].Content.HTML = Sanitize(qs[i].Content.HTML)
		if qs[i].FollowUp != nil {
			sanitizeQuestions(qs[i].FollowUp.Questions)
		}
	}
}
