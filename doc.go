/*
Package journeys previews insurance quote journeys.

A journey is a schema document: ordered pages, each holding groups of typed
questions, optional visibility rules, follow-up sub-questions revealed by a
yes/no answer (possibly repeated as numbered instances), and the fixed
checkout pages (quote, summary, payment) at the end. The engine turns a
journey plus the answers collected so far into a linear list of steps and
drives a preview session over it, one question or one page at a time.

# Concept

Every transition is a pure function of the journey and the current state.
The state is a plain value (answers, cursor, validation messages) that hosts
store wherever they like; the engine rebuilds the step list from scratch on
every change, so visibility always reflects the latest answers.

# Usage

	eng, err := journeys.New("./journeys")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Open(ctx, "motor", "", "")
	if err != nil {
		log.Fatal(err)
	}

	state, err = eng.Answer(ctx, state, domain.Key("age"), 34)
	if err != nil {
		log.Fatal(err)
	}
	state, err = eng.Next(ctx, state)

When Next is blocked, state.LastError (question mode) or state.PageErrors
(page mode) carry the messages and the cursor stays where it was.

# Hosts

The same engine backs the terminal previewer (pkg/runner), the HTTP preview
API (pkg/adapters/http) and the MCP tool server (pkg/adapters/mcp). Sessions
are persisted through ports.StateStore implementations in pkg/adapters.
*/
package journeys
