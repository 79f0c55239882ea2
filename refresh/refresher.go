// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
	"github.com/poiesic/concierge/upstream"
)

// CheckpointName is the checkpoint key used by catalog refreshes.
const CheckpointName = "catalog-refresh"

// Ingester stores a batch of residences.
type Ingester interface {
	Ingest(ctx context.Context, residences []*core.Residence) error
}

// Config holds configuration for the refresh operation.
type Config struct {
	// PageSize is the number of residences fetched per page
	PageSize int

	// ReportInterval is how often to report progress (number of residences)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for a page fetch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Resume continues from the last saved checkpoint instead of page 1
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PageSize:       DefaultPageSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Resume:         true,
	}
}

// Stats summarizes a completed refresh.
type Stats struct {
	Pages      int
	Residences int
	Resumed    bool
	Elapsed    time.Duration
}

// Refresher orchestrates copying the upstream catalog into local storage.
type Refresher struct {
	ingester    Ingester
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	iterator    *PageIterator
	logger      *slog.Logger
}

// NewRefresher creates a new refresher.
// checkpoints may be nil, which disables resuming.
// progress: where to write progress output (typically os.Stderr)
func NewRefresher(pager Pager, ingester Ingester, checkpoints storage.CheckpointRepository, config *Config, progress io.Writer) (*Refresher, error) {
	if pager == nil {
		return nil, ErrPagerRequired
	}
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Refresher{
		ingester:    ingester,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		iterator:    NewPageIterator(pager, config.PageSize, config.MaxRetries, config.RetryDelay),
		logger:      slog.Default().With("component", "refresh"),
	}, nil
}

// Run executes the refresh. The checkpoint is removed once every page is stored.
func (r *Refresher) Run(ctx context.Context) (*Stats, error) {
	first := 1
	done := 0
	stats := &Stats{}

	if r.config.Resume && r.checkpoints != nil {
		cp, err := r.checkpoints.LoadCheckpoint(ctx, CheckpointName)
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			first = cp.Page + 1
			done = cp.Page * r.iterator.pageSize
			stats.Resumed = true
			fmt.Fprintf(r.progress, "Resuming catalog refresh after page %d\n", cp.Page)
		}
	}

	var tracker *ProgressTracker
	err := r.iterator.ForEach(ctx, first, func(page *upstream.Page) error {
		if tracker == nil {
			fmt.Fprintf(r.progress, "Refreshing %d residences (page size: %d)\n", page.Total, page.Limit)
			tracker = NewProgressTracker(r.progress, page.Total, r.config.ReportInterval)
			tracker.Start(done)
		}
		tracker.SetTotal(page.Total)

		if err := r.ingester.Ingest(ctx, page.Residences); err != nil {
			return fmt.Errorf("failed to ingest page %d: %w", page.Page, err)
		}
		stats.Pages++
		stats.Residences += len(page.Residences)
		tracker.Increment(len(page.Residences))

		if r.checkpoints != nil {
			cp := &core.Checkpoint{Name: CheckpointName, Page: page.Page, Total: page.Total}
			if err := r.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
				return fmt.Errorf("failed to save checkpoint: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("catalog refresh stopped", "pages", stats.Pages, "err", err)
		return stats, err
	}

	if tracker == nil {
		fmt.Fprintf(r.progress, "No residences found upstream (0 residences)\n")
	} else {
		tracker.Finish()
		stats.Elapsed = tracker.Elapsed()
		fmt.Fprintf(r.progress, "Refresh complete. Stored %d residences from %d pages in %v\n",
			stats.Residences, stats.Pages, stats.Elapsed.Round(time.Millisecond))
	}

	if r.checkpoints != nil {
		if err := r.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
			return stats, fmt.Errorf("failed to clear checkpoint: %w", err)
		}
	}
	return stats, nil
}
