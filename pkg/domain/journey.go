package domain

// Template tags a page with the way it is rendered.
type Template string

const (
	TemplateForm    Template = "form"
	TemplateQuote   Template = "quote"
	TemplateSummary Template = "summary"
	TemplatePayment Template = "payment"
)

// CheckoutTemplates are the fixed trailing pages of every journey, in order.
var CheckoutTemplates = []Template{TemplateQuote, TemplateSummary, TemplatePayment}

// IsCheckout reports whether pages with this template are rendered as a
// single page-level unit in every traversal mode.
func (t Template) IsCheckout() bool {
	switch t {
	case TemplateQuote, TemplateSummary, TemplatePayment:
		return true
	}
	return false
}

// PreviewMode selects how a preview session traverses a journey.
type PreviewMode string

const (
	ModeQuestion PreviewMode = "question"
	ModePage     PreviewMode = "page"
)

// Valid reports whether m is a known mode.
func (m PreviewMode) Valid() bool {
	return m == ModeQuestion || m == ModePage
}

// Journey is the root document describing an insurance quote flow.
type Journey struct {
	// ID identifies the document in its loader. Loaders fill it from the
	// file or document name when the document itself does not carry one.
	ID             string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	LineOfBusiness string `json:"lineOfBusiness" yaml:"lineOfBusiness" mapstructure:"lineOfBusiness"`
	Meta           Meta   `json:"meta" yaml:"meta" mapstructure:"meta"`
	Pages          []Page `json:"pages" yaml:"pages" mapstructure:"pages"`
}

// Meta holds document bookkeeping and the persisted preview preference.
type Meta struct {
	Version     int         `json:"version" yaml:"version" mapstructure:"version"`
	CreatedAt   string      `json:"createdAt,omitempty" yaml:"createdAt,omitempty" mapstructure:"createdAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty" mapstructure:"updatedAt"`
	PreviewMode PreviewMode `json:"previewMode,omitempty" yaml:"previewMode,omitempty" mapstructure:"previewMode"`
}

// Page is one screen in page-at-a-time mode.
type Page struct {
	ID       string     `json:"id" yaml:"id" mapstructure:"id"`
	Name     string     `json:"name" yaml:"name" mapstructure:"name"`
	Template Template   `json:"template" yaml:"template" mapstructure:"template"`
	Groups   []Group    `json:"groups" yaml:"groups" mapstructure:"groups"`
	Flow     []FlowItem `json:"flow" yaml:"flow" mapstructure:"flow"`
}

// Group returns the group with the given id.
func (p *Page) Group(id string) (*Group, bool) {
	for i := range p.Groups {
		if p.Groups[i].ID == id {
			return &p.Groups[i], true
		}
	}
	return nil, false
}

// FlowItemType tags the FlowItem variant.
type FlowItemType string

const (
	FlowGroup FlowItemType = "group"
	FlowText  FlowItemType = "text"
)

// FlowItem orders groups and standalone text blocks within a page.
// Title, Level and BodyHTML are only meaningful for FlowText items.
type FlowItem struct {
	Type     FlowItemType `json:"type" yaml:"type" mapstructure:"type"`
	ID       string       `json:"id" yaml:"id" mapstructure:"id"`
	Title    string       `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Level    int          `json:"level,omitempty" yaml:"level,omitempty" mapstructure:"level"`
	BodyHTML string       `json:"bodyHtml,omitempty" yaml:"bodyHtml,omitempty" mapstructure:"bodyHtml"`
}

// RichText is an optional block of sanitized HTML. The engine never
// interprets the markup.
type RichText struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	HTML    string `json:"html" yaml:"html" mapstructure:"html"`
}

// Logic holds conjunctive visibility rules.
type Logic struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Rules   []Rule `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// Active reports whether the logic constrains visibility at all.
func (l Logic) Active() bool {
	return l.Enabled && len(l.Rules) > 0
}

// Group is a titled cluster of questions within a page.
type Group struct {
	ID          string     `json:"id" yaml:"id" mapstructure:"id"`
	Name        string     `json:"name" yaml:"name" mapstructure:"name"`
	Description RichText   `json:"description" yaml:"description" mapstructure:"description"`
	Logic       Logic      `json:"logic" yaml:"logic" mapstructure:"logic"`
	Questions   []Question `json:"questions" yaml:"questions" mapstructure:"questions"`
}

// Question is a single input (or display block) of the journey.
type Question struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id"`
	Type        QuestionType `json:"type" yaml:"type" mapstructure:"type"`
	Title       string       `json:"title" yaml:"title" mapstructure:"title"`
	Help        string       `json:"help,omitempty" yaml:"help,omitempty" mapstructure:"help"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	Required    bool         `json:"required" yaml:"required" mapstructure:"required"`
	ErrorText   string       `json:"errorText,omitempty" yaml:"errorText,omitempty" mapstructure:"errorText"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Logic       Logic        `json:"logic" yaml:"logic" mapstructure:"logic"`
	Content     RichText     `json:"content" yaml:"content" mapstructure:"content"`
	FollowUp    *FollowUp    `json:"followUp,omitempty" yaml:"followUp,omitempty" mapstructure:"followUp"`
}

// HasFollowUp reports whether answering q can reveal follow-up questions.
func (q *Question) HasFollowUp() bool {
	return q.Type == QuestionYesNo && q.FollowUp != nil && q.FollowUp.Enabled
}

// HasRepeatableFollowUp reports whether q owns repeat instances.
func (q *Question) HasRepeatableFollowUp() bool {
	return q.HasFollowUp() && q.FollowUp.Repeat.Enabled
}

// FollowUp is a reduced sub-schema revealed under a yes/no question.
type FollowUp struct {
	Enabled      bool       `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	TriggerValue string     `json:"triggerValue" yaml:"triggerValue" mapstructure:"triggerValue"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Questions    []Question `json:"questions" yaml:"questions" mapstructure:"questions"`
	Repeat       Repeat     `json:"repeat" yaml:"repeat" mapstructure:"repeat"`
}

// MaxRepeatInstances caps Repeat.Max.
const MaxRepeatInstances = 50

// Repeat configures repeatable follow-up instances.
type Repeat struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Min       int    `json:"min" yaml:"min" mapstructure:"min"`
	Max       int    `json:"max" yaml:"max" mapstructure:"max"`
	AddLabel  string `json:"addLabel,omitempty" yaml:"addLabel,omitempty" mapstructure:"addLabel"`
	ItemLabel string `json:"itemLabel,omitempty" yaml:"itemLabel,omitempty" mapstructure:"itemLabel"`
}

// Bounds returns Min and Max clamped so that 0 <= min <= max <= MaxRepeatInstances.
func (r Repeat) Bounds() (minN, maxN int) {
	minN, maxN = r.Min, r.Max
	if maxN > MaxRepeatInstances {
		maxN = MaxRepeatInstances
	}
	if maxN < 0 {
		maxN = 0
	}
	if minN < 0 {
		minN = 0
	}
	if minN > maxN {
		minN = maxN
	}
	return minN, maxN
}

// Page returns the page with the given id.
func (j *Journey) Page(id string) (*Page, bool) {
	for i := range j.Pages {
		if j.Pages[i].ID == id {
			return &j.Pages[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the journey.
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	out := *j
	out.Pages = make([]Page, len(j.Pages))
	for i, p := range j.Pages {
		cp := p
		cp.Flow = append([]FlowItem(nil), p.Flow...)
		cp.Groups = make([]Group, len(p.Groups))
		for gi, g := range p.Groups {
			cg := g
			cg.Logic.Rules = append([]Rule(nil), g.Logic.Rules...)
			cg.Questions = cloneQuestions(g.Questions)
			cp.Groups[gi] = cg
		}
		out.Pages[i] = cp
	}
	return &out
}

func cloneQuestions(src []Question) []Question {
	if src == nil {
		return nil
	}
	out := make([]Question, len(src))
	for i, q := range src {
		cq := q
		cq.Options = append([]string(nil), q.Options...)
		cq.Logic.Rules = append([]Rule(nil), q.Logic.Rules...)
		if q.FollowUp != nil {
			fu := *q.FollowUp
			fu.Questions = cloneQuestions(q.FollowUp.Questions)
			cq.FollowUp = &fu
		}
		out[i] = cq
	}
	return out
}
