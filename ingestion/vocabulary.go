package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// VocabularyListener is told about every vocabulary list the pipeline saves.
type VocabularyListener func(field core.Field, values []string)

// derivedFields are the fields whose vocabularies come from catalog contents.
// Budget bands are fixed and never derived.
var derivedFields = []core.Field{core.FieldLocation, core.FieldBrand, core.FieldAmenities, core.FieldLifestyle}

// vocabularyProcessor rebuilds vocabularies from the whole catalog.
type vocabularyProcessor struct {
	catalog  storage.CatalogRepository
	repo     storage.VocabularyRepository
	listener VocabularyListener
	logger   *slog.Logger
}

var _ processor = (*vocabularyProcessor)(nil)

func newVocabularyProcessor(catalog storage.CatalogRepository, repo storage.VocabularyRepository, listener VocabularyListener, logger *slog.Logger) (processor, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if repo == nil {
		return nil, ErrVocabularyRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &vocabularyProcessor{
		catalog:  catalog,
		repo:     repo,
		listener: listener,
		logger:   logger.With("processor", "vocabulary"),
	}, nil
}

// process merges values found in the catalog into the stored vocabularies.
// Stored values are never removed, so curated entries survive.
func (vp *vocabularyProcessor) process(ctx context.Context, _ ...string) error {
	residences, err := vp.catalog.ListResidences(ctx)
	if err != nil {
		return err
	}
	derived := Derive(residences)

	for _, f := range derivedFields {
		stored, err := vp.repo.LoadVocabulary(ctx, f)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		merged := mergeValues(stored, derived[f])
		if len(merged) == 0 {
			continue
		}
		if slices.Equal(merged, stored) {
			continue
		}
		if err := vp.repo.SaveVocabulary(ctx, f, merged); err != nil {
			return err
		}
		vp.logger.Debug("vocabulary updated", "field", f, "values", len(merged))
		if vp.listener != nil {
			vp.listener(f, merged)
		}
	}
	return nil
}

// Derive collects the distinct values each derived field takes across residences.
func Derive(residences []*core.Residence) map[core.Field][]string {
	out := make(map[core.Field][]string, len(derivedFields))
	for _, r := range residences {
		out[core.FieldLocation] = append(out[core.FieldLocation], r.City, r.Country)
		out[core.FieldBrand] = append(out[core.FieldBrand], r.Brand)
		out[core.FieldAmenities] = append(out[core.FieldAmenities], r.Amenities...)
		out[core.FieldLifestyle] = append(out[core.FieldLifestyle], r.Lifestyles...)
	}
	for f, values := range out {
		out[f] = mergeValues(nil, values)
	}
	return out
}

// mergeValues returns the sorted union of both lists, case-insensitively, keeping the first spelling seen.
func mergeValues(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	var out []string
	for _, v := range slices.Concat(existing, added) {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
