package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// RankingSource returns the published rankings of a residence.
type RankingSource interface {
	Rankings(ctx context.Context, residenceID string) ([]core.RankingScore, error)
}

// rankingProcessor attaches published rankings to stored residences.
type rankingProcessor struct {
	catalog storage.CatalogRepository
	source  RankingSource
	logger  *slog.Logger
}

var _ processor = (*rankingProcessor)(nil)

func newRankingProcessor(catalog storage.CatalogRepository, source RankingSource, logger *slog.Logger) (processor, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if source == nil {
		return nil, fmt.Errorf("ranking source required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &rankingProcessor{
		catalog: catalog,
		source:  source,
		logger:  logger.With("processor", "rankings"),
	}, nil
}

// process fetches rankings for each residence and stores the ones that changed.
// A failure for one residence does not stop the others.
func (rp *rankingProcessor) process(ctx context.Context, ids ...string) error {
	rp.logger.Info("processing residences for rankings", "residences", len(ids))

	var errs []error
	var updated []*core.Residence
	for _, id := range ids {
		rankings, err := rp.source.Rankings(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("rankings for %s: %w", id, err))
			continue
		}
		res, err := rp.catalog.GetResidence(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("loading %s: %w", id, err))
			continue
		}
		res.Rankings = rankings
		if err := core.ValidateResidence(res); err != nil {
			errs = append(errs, err)
			continue
		}
		updated = append(updated, res)
	}

	if len(updated) > 0 {
		if err := rp.catalog.PutResidences(ctx, updated...); err != nil {
			errs = append(errs, err)
		}
	}
	rp.logger.Debug("rankings attached", "updated", len(updated), "failed", len(errs))
	return errors.Join(errs...)
}
