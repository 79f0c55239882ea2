package storage

import (
	"context"

	"github.com/poiesic/concierge/core"
)

// SessionRepository persists conversation sessions.
// Implementations must be thread-safe and support concurrent access.
type SessionRepository interface {
	// CreateSession stores a new session.
	// Returns ErrDuplicateKey if a session with the same Id exists.
	CreateSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by Id.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// UpdateSession replaces a stored session.
	// Returns ErrNotFound if the session doesn't exist.
	UpdateSession(ctx context.Context, session *core.Session) error

	// DeleteSession removes a session.
	// Returns ErrNotFound if the session doesn't exist.
	DeleteSession(ctx context.Context, id string) error

	// ListSessions returns sessions with the given status, or all sessions
	// when status is empty. Order is unspecified.
	ListSessions(ctx context.Context, status core.SessionStatus) ([]*core.Session, error)

	// Close releases resources held by the repository.
	Close() error
}

// CatalogRepository stores candidate residences and answers candidate queries.
type CatalogRepository interface {
	// PutResidences inserts or replaces residences by Id.
	// Sets UpdatedAt on each residence.
	PutResidences(ctx context.Context, residences ...*core.Residence) error

	// GetResidence retrieves a residence by Id.
	// Returns ErrNotFound if the residence doesn't exist.
	GetResidence(ctx context.Context, id string) (*core.Residence, error)

	// DeleteResidence removes a residence.
	// Returns ErrNotFound if the residence doesn't exist.
	DeleteResidence(ctx context.Context, id string) error

	// QueryResidences returns residences that fully satisfy every canonical value
	// in selections, ordered by Id. Custom values are ignored.
	QueryResidences(ctx context.Context, selections core.Selections) ([]*core.Residence, error)

	// ListResidences returns every residence ordered by Id.
	ListResidences(ctx context.Context) ([]*core.Residence, error)

	// CountResidences returns the number of stored residences.
	CountResidences(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// VocabularyRepository stores canonical vocabulary lists per field.
type VocabularyRepository interface {
	// SaveVocabulary replaces the list for a field.
	SaveVocabulary(ctx context.Context, field core.Field, values []string) error

	// LoadVocabulary returns the list for a field.
	// Returns ErrNotFound if nothing was saved for the field.
	LoadVocabulary(ctx context.Context, field core.Field) ([]string, error)

	// Close releases resources held by the repository.
	Close() error
}

// CheckpointRepository stores progress markers for resumable jobs.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint under its Name.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint saved under name.
	// Returns nil, nil if none exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes a checkpoint. Missing checkpoints are not an error.
	DeleteCheckpoint(ctx context.Context, name string) error
}
