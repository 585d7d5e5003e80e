/*
Package runner implements the terminal previewer loop for journeys.

It is the bridge between a ports.PreviewEngine and a person (or script) at a
terminal. Each turn the runner builds a View of the session, hands it to an
IOHandler, reads one line back and turns it into an engine transition.

# Key Components

  - Runner: The loop. It persists the session after every transition when a
    StateStore is configured.
  - IOHandler: Decouples presentation from the loop.
  - TextHandler: Markdown views for interactive use.
  - JSONHandler: One JSON view per line for scripted previews.

# Input

In question mode a line answers the current question and advances; an empty
line advances without changing the answer. In page mode a line of the form
field=value answers one field of the page (field is the field number or its
id) and an empty line submits the page. Lines starting with a colon are
commands: :back, :next, :add [parent], :remove N [parent] and :quit.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithStore(store),
		runner.WithSessionID("demo"),
	)
	state, err := r.Run(ctx, engine, "motor")
*/
package runner
