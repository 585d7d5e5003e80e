package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/journeys/internal/presentation/tui"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/runner"
)

// PreviewOptions configures an interactive preview.
type PreviewOptions struct {
	JourneyID string
	SessionID string
	Mode      domain.PreviewMode
	// JSON switches to the line-delimited JSON protocol.
	JSON bool
	// Watch restarts the preview whenever journey documents change.
	Watch bool
	// Fresh discards a stored session before starting.
	Fresh bool

	In  io.Reader
	Out io.Writer
}

// Preview runs the terminal previewer until the user quits.
func Preview(ctx context.Context, app *App, opts PreviewOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		if opts.SessionID == "" {
			// Scoped by directory so projects do not share a watch session.
			hash := md5.Sum([]byte(app.Config.Journeys.Dir + "/" + opts.JourneyID))
			opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
		}
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := app.Sessions.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	handler, err := newHandler(opts)
	if err != nil {
		return err
	}

	if opts.Watch {
		return runWatch(ctx, app, opts, handler)
	}

	state, err := newRunner(app, opts, handler).Run(ctx, app.Engine, opts.JourneyID)
	return finish(app, state, err)
}

func newHandler(opts PreviewOptions) (runner.IOHandler, error) {
	if opts.JSON {
		return runner.NewJSONHandler(opts.In, opts.Out), nil
	}

	var handlerOpts []runner.TextHandlerOption
	if runner.IsTerminal(opts.Out) {
		tui.PrintBanner(opts.Out)
		render, err := tui.NewRenderer("")
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
	}
	return runner.NewTextHandler(opts.In, opts.Out, handlerOpts...), nil
}

func newRunner(app *App, opts PreviewOptions, handler runner.IOHandler) *runner.Runner {
	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithMode(opts.Mode),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts,
			runner.WithSessionID(opts.SessionID),
			runner.WithStore(app.Sessions.Store()),
		)
	}
	return runner.NewRunner(runnerOpts...)
}

func finish(app *App, state *domain.State, err error) error {
	if errors.Is(err, runner.ErrInterrupted) {
		app.Logger.Info("preview interrupted")
		return nil
	}
	if err != nil {
		return err
	}
	if state != nil {
		app.Logger.Info("preview finished",
			"session_id", state.SessionID,
			"status", state.Status,
			"answers", state.Answers.Len(),
		)
	}
	return nil
}

// runWatch restarts the runner on every journey change. The session is
// persisted between runs so the preview resumes where it was.
func runWatch(ctx context.Context, app *App, opts PreviewOptions, handler runner.IOHandler) error {
	changes, err := app.Engine.Watch(ctx)
	if err != nil {
		return err
	}
	_ = handler.SystemOutput(ctx, fmt.Sprintf("Watching '%s' as session '%s'.", app.Config.Journeys.Dir, opts.SessionID))

	for {
		runCtx, cancel := context.WithCancel(ctx)
		type result struct {
			state *domain.State
			err   error
		}
		done := make(chan result, 1)
		go func() {
			s, err := newRunner(app, opts, handler).Run(runCtx, app.Engine, opts.JourneyID)
			done <- result{s, err}
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case id, ok := <-changes:
			cancel()
			<-done
			if !ok {
				return nil
			}
			app.Logger.Info("change detected, reloading", "journey", id)
			_ = handler.SystemOutput(ctx, fmt.Sprintf("Change detected in '%s'.", id))
			// Let the file system settle.
			time.Sleep(100 * time.Millisecond)
		case res := <-done:
			cancel()
			return finish(app, res.state, res.err)
		}
	}
}
