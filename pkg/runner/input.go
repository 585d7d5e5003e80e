package runner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/journeys/pkg/domain"
)

// InputError is a line the runner could not turn into a transition. The
// loop reports it and asks again.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func inputErrorf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// ParseAnswer converts a typed line into the answer value q expects.
// An empty line clears the answer.
func ParseAnswer(q *domain.Question, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch q.Type.Shape() {
	case domain.ShapeNone:
		return nil, inputErrorf("%s does not take an answer", q.ID)
	case domain.ShapeNumeric:
		n, err := strconv.ParseFloat(strings.NewReplacer(",", "", "£", "", "$", "", "€", "", "%", "").Replace(raw), 64)
		if err != nil {
			return nil, inputErrorf("%q is not a number", raw)
		}
		return n, nil
	case domain.ShapeBool:
		switch strings.ToLower(raw) {
		case "y", "yes", "true", "1", "x":
			return true, nil
		case "n", "no", "false", "0":
			return false, nil
		}
		return nil, inputErrorf("answer yes or no")
	case domain.ShapeStringList:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			opt, ok := resolveOption(q.Options, strings.TrimSpace(part))
			if !ok {
				return nil, inputErrorf("%q is not one of the options", strings.TrimSpace(part))
			}
			if !contains(out, opt) {
				out = append(out, opt)
			}
		}
		return out, nil
	}

	switch {
	case q.Type == domain.QuestionYesNo:
		if opt, ok := resolveOption(domain.YesNoOptions, raw); ok {
			return opt, nil
		}
		switch strings.ToLower(raw) {
		case "y":
			return "Yes", nil
		case "n":
			return "No", nil
		}
		return nil, inputErrorf("answer Yes or No")
	case q.Type.HasOptions():
		opt, ok := resolveOption(q.Options, raw)
		if !ok {
			return nil, inputErrorf("%q is not one of the options", raw)
		}
		return opt, nil
	}
	return raw, nil
}

// resolveOption matches s against options by 1-based number or by
// case-insensitive text and returns the canonical option.
func resolveOption(options []string, s string) (string, bool) {
	if n, ok := parseIndex(s, len(options)); ok {
		return options[n-1], true
	}
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o, true
		}
	}
	return "", false
}

func parseIndex(s string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i, true
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// Command is a colon-prefixed control line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand recognizes command lines. The bare words exit and quit are
// accepted as :quit.
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "exit", "quit":
		return Command{Name: "quit"}, true
	}
	if !strings.HasPrefix(line, ":") {
		return Command{}, false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Command{}, false
	}
	name := strings.ToLower(fields[0])
	switch name {
	case "q":
		name = "quit"
	case "b":
		name = "back"
	}
	return Command{Name: name, Args: fields[1:]}, true
}

// splitAssignment splits a page-mode line of the form field=value.
func splitAssignment(line string) (string, string, bool) {
	field, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(field), strings.TrimSpace(value), true
}
