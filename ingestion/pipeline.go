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


package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// Pipeline orchestrates the ingestion and enrichment of residences.
// It manages concurrent ranking enrichment and vocabulary rebuilds.
type Pipeline struct {
	catalog       storage.CatalogRepository
	vocabularies  storage.VocabularyRepository
	rankingPool   *ants.Pool
	vocabPool     *ants.Pool
	rankingProc   processor
	vocabProc     processor
	rankingSource RankingSource
	listener      VocabularyListener
	wg            sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for ranking enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.rankingPool != nil {
			p.rankingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.rankingPool = pool
		return nil
	}
}

// WithRankingSource enables ranking enrichment from source.
func WithRankingSource(source RankingSource) Option {
	return func(p *Pipeline) error {
		p.rankingSource = source
		return nil
	}
}

// WithVocabularyListener registers a callback for every saved vocabulary list.
func WithVocabularyListener(listener VocabularyListener) Option {
	return func(p *Pipeline) error {
		p.listener = listener
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	catalog storage.CatalogRepository,
	vocabularies storage.VocabularyRepository,
	opts ...Option,
) (*Pipeline, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if vocabularies == nil {
		return nil, ErrVocabularyRepositoryRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)

	rankingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Vocabulary rebuilds read-merge-write the same keys, so they run one at a time
	vocabPool, err := ants.NewPool(1)
	if err != nil {
		rankingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		catalog:      catalog,
		vocabularies: vocabularies,
		rankingPool:  rankingPool,
		vocabPool:    vocabPool,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create processors after options are applied (so they get final config)
	if p.rankingSource != nil {
		rankingProc, err := newRankingProcessor(catalog, p.rankingSource, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.rankingProc = rankingProc
	}

	vocabProc, err := newVocabularyProcessor(catalog, vocabularies, p.listener, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.vocabProc = vocabProc

	return p, nil
}

// Ingest stores residences and enriches them asynchronously.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, residences []*core.Residence) error {
	if len(residences) == 0 {
		return nil
	}

	if err := p.catalog.PutResidences(ctx, residences...); err != nil {
		return err
	}

	ids := make([]string, len(residences))
	for i, r := range residences {
		ids[i] = r.Id
	}

	if p.rankingProc != nil {
		p.submit(p.rankingPool, "rankings", func() error {
			return p.rankingProc.process(context.Background(), ids...)
		})
	}

	// Rankings may still be in flight; vocabularies only read identity fields
	p.submit(p.vocabPool, "vocabulary", func() error {
		return p.vocabProc.process(context.Background(), ids...)
	})

	return nil
}

// Rebuild synchronously rebuilds vocabularies from the current catalog.
func (p *Pipeline) Rebuild(ctx context.Context) error {
	return p.vocabProc.process(ctx)
}

func (p *Pipeline) submit(pool *ants.Pool, name string, task func() error) {
	p.wg.Add(1)
	err := pool.Submit(func() {
		defer p.wg.Done()
		if err := task(); err != nil {
			p.logger.Error("error processing residences", "processor", name, "err", err)
		}
	})
	if err != nil {
		p.wg.Done()
		p.logger.Error("error submitting task", "processor", name, "err", err)
	}
}

// Wait blocks until all submitted background work has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release waits for background work and releases the worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.rankingPool != nil {
		p.rankingPool.Release()
	}
	if p.vocabPool != nil {
		p.vocabPool.Release()
	}
}
