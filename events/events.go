// Package events publishes session lifecycle events on an in-process bus.
//
// Publishing never blocks a conversation: the session manager logs publish
// failures and carries on. Consumers subscribe with Bus.Consume.
package events

import (
	"context"
	"time"

	"github.com/poiesic/concierge/core"
)

// Topic is the bus topic all session events go to.
const Topic = "concierge.sessions"

// Type names what happened to a session.
type Type string

const (
	SessionCreated     Type = "session.created"
	SessionCompleted   Type = "session.completed"
	SessionExpired     Type = "session.expired"
	ConstraintsRelaxed Type = "constraints.relaxed"
	SearchExhausted    Type = "search.exhausted"
	SuggestionPending  Type = "suggestion.pending"
)

// Event is a single session lifecycle notification.
type Event struct {
	Type      Type         `json:"type"`
	SessionId string       `json:"sessionId"`
	Fields    []core.Field `json:"fields,omitempty"` // Relaxed or pending fields
	At        time.Time    `json:"at"`
}

// Publisher sends events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }
