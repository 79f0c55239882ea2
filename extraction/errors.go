package extraction

import "errors"

var (
	// ErrVocabularyRequired indicates a nil Vocabulary was provided.
	ErrVocabularyRequired = errors.New("vocabulary is required")

	// ErrNotCanonical indicates an accepted value is not in the field's vocabulary.
	ErrNotCanonical = errors.New("value is not canonical")

	// ErrEmptyValue indicates an empty custom value.
	ErrEmptyValue = errors.New("value cannot be empty")
)
