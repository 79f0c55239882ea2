package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// VocabularyRepository implements storage.VocabularyRepository for BadgerDB.
type VocabularyRepository struct {
	backend *Backend
}

var _ storage.VocabularyRepository = (*VocabularyRepository)(nil)

// NewVocabularyRepository creates a new VocabularyRepository.
func NewVocabularyRepository(backend *Backend) (*VocabularyRepository, error) {
	return &VocabularyRepository{
		backend: backend,
	}, nil
}

// Close releases resources. VocabularyRepository has no resources to release.
func (r *VocabularyRepository) Close() error {
	return nil
}

// SaveVocabulary replaces the list for a field.
func (r *VocabularyRepository) SaveVocabulary(ctx context.Context, field core.Field, values []string) error {
	if !field.Valid() {
		return core.ErrUnknownField
	}
	value, err := storage.MarshalStrings(values)
	if err != nil {
		return err
	}
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeVocabularyKey(field), value)
	})
}

// LoadVocabulary returns the list for a field.
func (r *VocabularyRepository) LoadVocabulary(ctx context.Context, field core.Field) ([]string, error) {
	var values []string
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makeVocabularyKey(field))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			values, err = storage.UnmarshalStrings(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Fetch implements vocabulary.Source so stored lists can seed a validator.
// A field with nothing stored yields an empty list.
func (r *VocabularyRepository) Fetch(ctx context.Context, field core.Field) ([]string, error) {
	values, err := r.LoadVocabulary(ctx, field)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return values, err
}
