package ai

import "context"

// Responder phrases the outcome of a conversational turn as a reply to the user.
// Implementations must be thread-safe for concurrent use.
type Responder interface {
	// Respond returns the text shown to the user for the turn.
	// Returns an error if the reply could not be generated; callers fall back
	// to a template reply.
	Respond(ctx context.Context, turn *Turn) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Responder returns the reply generation service.
	// The returned Responder is safe for concurrent use.
	Responder() Responder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
