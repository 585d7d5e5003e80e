package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/aretw0/journeys"
	"github.com/aretw0/journeys/internal/presentation/graph"
	"github.com/aretw0/journeys/internal/validator"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/runner"
)

// Validate lints the given journeys, or every journey when ids is empty,
// and prints the findings. The returned error joins one
// *validator.IssuesError per journey that has error-severity issues.
func Validate(ctx context.Context, eng *journeys.Engine, ids []string, w io.Writer) error {
	if len(ids) == 0 {
		all, err := eng.Journeys(ctx)
		if err != nil {
			return err
		}
		ids = all
	}
	if len(ids) == 0 {
		return fmt.Errorf("no journeys found")
	}

	var errs []error
	for _, id := range ids {
		issues, err := eng.Lint(ctx, id)
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(w, "✗ %s: %v\n", id, err)
			continue
		}
		if len(issues) == 0 {
			fmt.Fprintf(w, "✓ %s\n", id)
			continue
		}

		mark := "!"
		if validator.HasErrors(issues) {
			mark = "✗"
			var blocking []validator.Issue
			for _, i := range issues {
				if i.Severity == validator.SeverityError {
					blocking = append(blocking, i)
				}
			}
			errs = append(errs, &validator.IssuesError{JourneyID: id, Issues: blocking})
		}
		fmt.Fprintf(w, "%s %s\n", mark, id)
		for _, i := range issues {
			fmt.Fprintf(w, "    %s\n", i)
		}
	}
	return errors.Join(errs...)
}

// PrintSteps prints the step list of a journey for the given answers.
// answersJSON maps answer keys ("question" or "parent/question/instance")
// to values; instance keys register their instance on the parent.
func PrintSteps(ctx context.Context, eng *journeys.Engine, journeyID string, mode domain.PreviewMode, answersJSON string, w io.Writer) error {
	state, err := eng.Open(ctx, journeyID, "steps", mode)
	if err != nil {
		return err
	}
	if answersJSON != "" {
		answers, err := DecodeAnswers(answersJSON)
		if err != nil {
			return err
		}
		state.Answers = answers
	}

	steps, err := eng.Steps(ctx, state)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEY\tKIND\tPAGE\tLABEL")
	for i, s := range steps {
		label := s.PageName
		if s.Question != nil {
			label = s.Question.Title
			if s.InstanceLabel != "" {
				label = s.InstanceLabel + ": " + label
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.Key, s.Kind, s.PageID, label)
	}
	return tw.Flush()
}

// DecodeAnswers parses a JSON object of answers keyed by answer key.
func DecodeAnswers(raw string) (domain.Answers, error) {
	answers := domain.NewAnswers()
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return answers, fmt.Errorf("invalid answers JSON: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		key, err := domain.ParseAnswerKey(k)
		if err != nil {
			return answers, err
		}
		answers.Set(key, values[k])
		if key.IsInstance() {
			ids := answers.InstanceIDs(key.ParentID)
			if !slices.Contains(ids, key.InstanceID) {
				answers.SetInstanceIDs(key.ParentID, append(slices.Clone(ids), key.InstanceID))
			}
		}
	}
	return answers, nil
}

// Graph prints the Mermaid flowchart of a journey, highlighting the
// progress of sessionID when it is set.
func Graph(ctx context.Context, app *App, journeyID, sessionID string, w io.Writer) error {
	j, err := app.Engine.Journey(ctx, journeyID)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if sessionID != "" {
		state, err := app.Sessions.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		view, err := runner.BuildView(ctx, app.Engine, state)
		if err != nil {
			return err
		}
		if view.Current != nil {
			overlay = graph.SessionOverlay(state, *view.Current)
		}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(j, overlay))
	return err
}
