// Package schema checks that answer values have the shape their question
// type expects.
//
// It defines a small type system (string, number, bool, none, slices,
// option-restricted and custom validators). A Schema maps question ids to
// types and can be built from a journey:
//
//	s := schema.ForJourney(journey)
//	if err := schema.Validate(s, map[string]any{"age": "42"}); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas serialize as a map of question ids to type names, which is how the
// HTTP adapter publishes the expected answer shapes of a journey:
//
//	{"age": "number", "cover": "[string]", "intro": "none"}
//
// Numbers may arrive as strings because form inputs produce text; the rule
// evaluator parses them the same way.
package schema
