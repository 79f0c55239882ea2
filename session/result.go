package session

import "github.com/poiesic/concierge/core"

// QueryResult is the reply to one user message.
type QueryResult struct {
	SessionId        string                   `json:"sessionId"`
	FriendlyResponse string                   `json:"friendlyResponse"`
	Residences       []*core.ScoredResidence  `json:"residences"`
	Relaxed          bool                     `json:"relaxed"`
	RelaxedFields    []core.Field             `json:"relaxedFields"`
	Exhausted        bool                     `json:"exhausted,omitempty"`
	Pending          []core.PendingSuggestion `json:"pending,omitempty"`
	Hints            []core.Hint              `json:"hints,omitempty"`
	Ignored          []string                 `json:"ignored,omitempty"`
	Selections       core.Selections          `json:"selections"`
}

// Err returns core.ErrNoMatchesAfterFullRelaxation when nothing matched at all.
// The result is still a valid reply in that case.
func (r *QueryResult) Err() error {
	if r.Exhausted {
		return core.ErrNoMatchesAfterFullRelaxation
	}
	return nil
}
