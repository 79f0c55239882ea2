package badger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
// Residences are indexed by city and country so location queries avoid a full scan.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	return &CatalogRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CatalogRepository has no resources to release.
func (r *CatalogRepository) Close() error {
	return nil
}

// PutResidences inserts or replaces residences by Id.
func (r *CatalogRepository) PutResidences(ctx context.Context, residences ...*core.Residence) error {
	for _, res := range residences {
		if err := core.ValidateResidence(res); err != nil {
			return err
		}
	}
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, res := range residences {
			key := makeResidenceKey(res.Id)

			// Drop place index entries of the version being replaced
			old, err := readResidence(tx, key)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			if old != nil {
				if err := deletePlaceIndex(tx, old); err != nil {
					return err
				}
			}

			res.UpdatedAt = now
			value, err := storage.MarshalResidence(res)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
			for _, place := range places(res) {
				if err := tx.Set(makeResidencePlaceKey(place, res.Id), []byte(res.Id)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetResidence retrieves a residence by Id.
func (r *CatalogRepository) GetResidence(ctx context.Context, id string) (*core.Residence, error) {
	var res *core.Residence
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		res, err = readResidence(tx, makeResidenceKey(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteResidence removes a residence and its index entries.
func (r *CatalogRepository) DeleteResidence(ctx context.Context, id string) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeResidenceKey(id)
		old, err := readResidence(tx, key)
		if err != nil {
			return err
		}
		if err := deletePlaceIndex(tx, old); err != nil {
			return err
		}
		return tx.Delete(key)
	})
}

// QueryResidences returns residences fully satisfying the canonical selections, ordered by Id.
func (r *CatalogRepository) QueryResidences(ctx context.Context, selections core.Selections) ([]*core.Residence, error) {
	canonical := selections.Canonical()
	if err := storage.CheckQuery(canonical); err != nil {
		return nil, err
	}
	location := canonical.First(core.FieldLocation)

	var out []*core.Residence
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		if location == "" {
			return scanPrefix(tx, []byte(residencePrefix+":"), func(_, val []byte) error {
				res, err := storage.UnmarshalResidence(val)
				if err != nil {
					return err
				}
				if core.Satisfies(res, canonical) {
					out = append(out, res)
				}
				return nil
			})
		}

		// A residence can be indexed under both its city and country with the same name
		seen := map[string]bool{}
		return scanPrefix(tx, makePartialResidencePlaceKey(location), func(_, val []byte) error {
			id := string(val)
			if seen[id] {
				return nil
			}
			seen[id] = true
			res, err := readResidence(tx, makeResidenceKey(id))
			if err != nil {
				return err
			}
			if core.Satisfies(res, canonical) {
				out = append(out, res)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *core.Residence) int {
		return strings.Compare(a.Id, b.Id)
	})
	return out, nil
}

// ListResidences returns every residence ordered by Id.
func (r *CatalogRepository) ListResidences(ctx context.Context) ([]*core.Residence, error) {
	var out []*core.Residence
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(residencePrefix+":"), func(_, val []byte) error {
			res, err := storage.UnmarshalResidence(val)
			if err != nil {
				return err
			}
			out = append(out, res)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountResidences returns the number of stored residences.
func (r *CatalogRepository) CountResidences(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(residencePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func places(res *core.Residence) []string {
	var out []string
	for _, p := range []string{res.City, res.Country} {
		p = strings.TrimSpace(p)
		if p != "" && !slices.ContainsFunc(out, func(o string) bool { return strings.EqualFold(o, p) }) {
			out = append(out, p)
		}
	}
	return out
}

func deletePlaceIndex(tx *badger.Txn, res *core.Residence) error {
	for _, place := range places(res) {
		if err := tx.Delete(makeResidencePlaceKey(place, res.Id)); err != nil {
			return err
		}
	}
	return nil
}

func readResidence(tx *badger.Txn, key []byte) (*core.Residence, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var res *core.Residence
	err = item.Value(func(val []byte) error {
		var err error
		res, err = storage.UnmarshalResidence(val)
		return err
	})
	return res, err
}
