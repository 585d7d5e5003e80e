package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/pkg/domain"
)

// Overlay contains session data to highlight on the graph.
type Overlay struct {
	Answered []string // Node IDs, see NodeID
	Current  string
}

// GenerateMermaid produces a Mermaid flowchart of a journey.
// Pages and groups become subgraphs and questions become nodes, shaped by type:
// - Yes/No: {Rhombus}
// - Display: [Rectangle]
// - Checkout page: ((Circle))
// - Default input: [/Parallelogram/]
// Solid edges follow the step order, dotted edges carry visibility rules and
// labelled edges lead into follow-ups.
func GenerateMermaid(j *domain.Journey, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var (
		order []string
		rules []string
	)
	for pi := range j.Pages {
		p := &j.Pages[pi]
		pageID := PageNodeID(p.ID)

		if p.Template.IsCheckout() {
			fmt.Fprintf(&sb, "    %s((\"%s\"))\n", pageID, label(p.Name, p.ID))
			order = append(order, pageID)
			continue
		}

		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", pageID, label(p.Name, p.ID))
		for _, g := range runtime.FlowGroups(p) {
			groupID := "g_" + sanitizeMermaidID(g.ID)
			fmt.Fprintf(&sb, "        subgraph %s[\"%s\"]\n", groupID, label(g.Name, g.ID))
			for qi := range g.Questions {
				q := &g.Questions[qi]
				id := NodeID(domain.Key(q.ID))
				sb.WriteString("            " + node(id, q) + "\n")
				order = append(order, id)
				rules = append(rules, ruleEdges(q.Logic, id)...)

				if !q.HasFollowUp() {
					continue
				}
				edge := fmt.Sprintf("-- \"%s\" -->", escape(q.FollowUp.TriggerValue))
				if q.FollowUp.Repeat.Enabled {
					minN, maxN := q.FollowUp.Repeat.Bounds()
					edge = fmt.Sprintf("-- \"%s x%d..%d\" -->", escape(q.FollowUp.TriggerValue), minN, maxN)
				}
				for fi := range q.FollowUp.Questions {
					fq := &q.FollowUp.Questions[fi]
					fid := followUpID(q.ID, fq.ID)
					sb.WriteString("            " + node(fid, fq) + "\n")
					rules = append(rules, fmt.Sprintf("    %s %s %s", id, edge, fid))
					rules = append(rules, ruleEdges(fq.Logic, fid)...)
				}
			}
			sb.WriteString("        end\n")
			rules = append(rules, ruleEdges(g.Logic, groupID)...)
		}
		sb.WriteString("    end\n")
	}

	for i := 1; i < len(order); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", order[i-1], order[i])
	}
	for _, r := range rules {
		sb.WriteString(r + "\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Answered {
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s answered;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

// SessionOverlay builds the overlay of a session whose cursor is on current.
// All repeat instances of a follow-up question share one node.
func SessionOverlay(state *domain.State, current domain.Step) *Overlay {
	o := &Overlay{}
	for k, v := range state.Answers.Values {
		if domain.IsAnswered(v) {
			o.Answered = append(o.Answered, NodeID(k))
		}
	}
	slices.Sort(o.Answered)

	if current.Kind == domain.StepPage {
		o.Current = PageNodeID(current.PageID)
	} else {
		o.Current = NodeID(current.Key)
	}
	return o
}

// NodeID returns the node of the question answering k.
func NodeID(k domain.AnswerKey) string {
	if k.ParentID != "" {
		return followUpID(k.ParentID, k.QuestionID)
	}
	return "q_" + sanitizeMermaidID(k.QuestionID)
}

// PageNodeID returns the subgraph (or node, for checkout pages) of a page.
func PageNodeID(pageID string) string {
	return "p_" + sanitizeMermaidID(pageID)
}

func followUpID(parentID, questionID string) string {
	return "q_" + sanitizeMermaidID(parentID) + "__" + sanitizeMermaidID(questionID)
}

func node(id string, q *domain.Question) string {
	opener, closer := "[/", "/]"
	switch q.Type {
	case domain.QuestionYesNo:
		opener, closer = "{", "}"
	case domain.QuestionDisplay:
		opener, closer = "[", "]"
	}
	text := label(q.Title, q.ID)
	if q.Required {
		text += " *"
	}
	return fmt.Sprintf("%s%s\"%s\"%s", id, opener, text, closer)
}

func ruleEdges(l domain.Logic, owner string) []string {
	if !l.Active() {
		return nil
	}
	out := make([]string, 0, len(l.Rules))
	for _, r := range l.Rules {
		cond := string(r.Operator)
		if r.Value != nil && r.Operator != domain.OpIsAnswered && r.Operator != domain.OpIsNotAnswered {
			cond = fmt.Sprintf("%s %v", r.Operator, r.Value)
		}
		out = append(out, fmt.Sprintf("    %s -. \"%s\" .-> %s", NodeID(domain.Key(r.QuestionID)), escape(cond), owner))
	}
	return out
}

func label(name, id string) string {
	if strings.TrimSpace(name) == "" {
		return escape(id)
	}
	return escape(name)
}

// Escape double quotes for Mermaid labels
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}


func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
