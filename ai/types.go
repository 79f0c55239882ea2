package ai

import "github.com/poiesic/concierge/core"

// Turn is everything a responder knows about one processed user message.
type Turn struct {
	// Message is the user's message as typed.
	Message string

	// Selections are the session's selections after the message was applied.
	Selections core.Selections

	// Applied lists fields whose canonical values changed this turn.
	Applied []core.Field

	// Pending holds values awaiting confirmation. The first entry is the one the user is asked about.
	Pending []core.PendingSuggestion

	// Hints propose values for fields the user has not set.
	Hints []core.Hint

	// Ignored holds fragments that could not be attributed to any field.
	Ignored []string

	// Results are the ranked residences, best first.
	Results []*core.ScoredResidence

	// RelaxedFields lists the constraints dropped to find Results, in drop order.
	RelaxedFields []core.Field

	// Exhausted is set when nothing matched even after every constraint was dropped.
	Exhausted bool
}

// Relaxed reports whether constraints were dropped to produce the results.
func (t *Turn) Relaxed() bool {
	return len(t.RelaxedFields) > 0
}
