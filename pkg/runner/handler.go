package runner

import (
	"context"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (scripted) modes.
type IOHandler interface {
	// Show presents the session at its cursor.
	Show(ctx context.Context, view *View) error

	// Input reads one line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (rejected input, limits reached)
	// distinct from the journey content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
// This keeps terminal styling out of the runner.
type ContentRenderer func(string) (string, error)
