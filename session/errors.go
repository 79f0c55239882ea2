package session

import "errors"

var (
	// ErrRepositoryRequired is returned when a session repository is not provided.
	ErrRepositoryRequired = errors.New("session repository required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrEngineRequired is returned when a relaxation engine is not provided.
	ErrEngineRequired = errors.New("relaxation engine required")

	// ErrRankerRequired is returned when a ranker is not provided.
	ErrRankerRequired = errors.New("ranker required")

	// ErrInvalidIdleTimeout is returned for a non-positive idle timeout.
	ErrInvalidIdleTimeout = errors.New("idle timeout must be positive")
)
