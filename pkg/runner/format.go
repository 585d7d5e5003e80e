package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/richtext"
)

// Markdown renders a view as markdown for terminals.
func Markdown(v *View) string {
	var b strings.Builder
	if v.Complete {
		fmt.Fprintf(&b, "## Journey complete\n\n%d answers recorded. Type `:back` to revisit the last step.\n", v.State.Answers.Len())
		return b.String()
	}
	if v.Current == nil {
		return "## This journey has no steps\n"
	}

	cur := v.Current
	fmt.Fprintf(&b, "## %s\n\n", orID(cur.PageName, cur.PageID))
	fmt.Fprintf(&b, "_Step %d of %d_\n\n", v.Position, v.Total)

	switch {
	case cur.Kind == domain.StepQuestion:
		if cur.GroupName != "" {
			fmt.Fprintf(&b, "### %s\n\n", cur.GroupName)
		}
		writeQuestion(&b, *cur, v.State, 0)
		if v.State.LastError != "" {
			fmt.Fprintf(&b, "> **%s**\n", v.State.LastError)
		}
	case cur.Template.IsCheckout():
		fmt.Fprintf(&b, "This is the %s page. Press enter to continue.\n", cur.Template)
	default:
		group := ""
		for i, f := range v.Fields {
			if f.GroupName != group {
				group = f.GroupName
				fmt.Fprintf(&b, "### %s\n\n", group)
			}
			writeQuestion(&b, f, v.State, i+1)
			if msg, ok := v.State.PageErrors[f.Key]; ok {
				fmt.Fprintf(&b, "> **%s**\n\n", msg)
			}
		}
		b.WriteString("Answer with `field=value`, then press enter on an empty line to continue.\n")
	}
	return b.String()
}

func writeQuestion(b *strings.Builder, s domain.Step, state *domain.State, number int) {
	q := s.Question
	if s.InstanceLabel != "" {
		fmt.Fprintf(b, "**%s**\n\n", s.InstanceLabel)
	}

	title := orID(q.Title, q.ID)
	if number > 0 {
		title = fmt.Sprintf("%d. %s", number, title)
	}
	if q.Required {
		title += " *"
	}
	fmt.Fprintf(b, "**%s** `%s`\n\n", title, s.ID)

	if q.Help != "" {
		fmt.Fprintf(b, "%s\n\n", q.Help)
	}
	if text := richtext.PlainText(q.Content.HTML); text != "" && (q.Content.Enabled || q.Type == domain.QuestionDisplay) {
		fmt.Fprintf(b, "%s\n\n", text)
	}

	options := q.Options
	if q.Type == domain.QuestionYesNo {
		options = domain.YesNoOptions
	}
	for i, o := range options {
		fmt.Fprintf(b, "%d. %s\n", i+1, o)
	}
	if len(options) > 0 {
		b.WriteString("\n")
	}

	if v, ok := state.Answers.Get(s.Key); ok && q.Type.Interactive() {
		fmt.Fprintf(b, "Current answer: `%v`\n\n", v)
	}
}

func orID(name, id string) string {
	if strings.TrimSpace(name) == "" {
		return id
	}
	return name
}
