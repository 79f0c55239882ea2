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


// Package concierge wires the conversational search stack onto a local store.
package concierge

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/ai/openai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/events"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/ingestion"
	"github.com/poiesic/concierge/ranking"
	"github.com/poiesic/concierge/refresh"
	"github.com/poiesic/concierge/relaxation"
	"github.com/poiesic/concierge/session"
	"github.com/poiesic/concierge/storage"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/poiesic/concierge/vocabulary"
)

// DefaultQueryCacheTTL is how long candidate query results are reused.
const DefaultQueryCacheTTL = time.Minute

// Concierge wires a badger store, the vocabulary, the cached candidate querier
// and the session manager into one handle. Create one per database directory
// with New and Close it when done.
type Concierge struct {
	repos     *badger.Repositories
	validator *vocabulary.Validator
	loader    *vocabulary.Loader
	source    *vocabulary.CachedSource
	querier   *relaxation.CachedQuerier
	manager   *session.Manager
	provider  ai.AIProvider
	logger    *slog.Logger
}

// Option configures a Concierge.
type Option func(*options)

type options struct {
	inMemory    bool
	aiConfig    *ai.Config
	querier     relaxation.Querier
	vocabulary  vocabulary.Source
	timeout     time.Duration
	sessions    storage.SessionRepository
	cacheTTL    time.Duration
	idleTimeout time.Duration
	publisher   events.Publisher
	weights     ranking.Weights
	priority    []core.Field
	logger      *slog.Logger
}

// WithInMemory keeps everything in memory; filePath is ignored.
func WithInMemory() Option {
	return func(o *options) { o.inMemory = true }
}

// WithAIConfig phrases replies with a model behind an OpenAI-compatible API.
// Without it replies come from ai.Template.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) { o.aiConfig = cfg }
}

// WithQuerier replaces the local catalog as the source of candidates,
// for example with an upstream.Client.
func WithQuerier(q relaxation.Querier) Option {
	return func(o *options) { o.querier = q }
}

// WithVocabularySource is consulted before the local store when loading vocabularies.
func WithVocabularySource(src vocabulary.Source) Option {
	return func(o *options) { o.vocabulary = src }
}

// WithQueryTimeout bounds each candidate query.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithSessionRepository stores sessions somewhere other than the local store,
// for example redis.
func WithSessionRepository(repo storage.SessionRepository) Option {
	return func(o *options) { o.sessions = repo }
}

// WithQueryCacheTTL sets how long candidate results are cached. Default is DefaultQueryCacheTTL.
func WithQueryCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithIdleTimeout sets the session idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.idleTimeout = d }
}

// WithPublisher sends session events to p.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithWeights overrides ranking weights.
func WithWeights(w ranking.Weights) Option {
	return func(o *options) { o.weights = w }
}

// WithPriority overrides the relaxation order.
func WithPriority(fields ...core.Field) Option {
	return func(o *options) { o.priority = fields }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New opens the store at filePath and builds the session manager on top of it.
// Vocabularies are loaded from the store, with budget bands built in.
func New(ctx context.Context, filePath string, opts ...Option) (*Concierge, error) {
	o := &options{
		cacheTTL:    DefaultQueryCacheTTL,
		idleTimeout: session.DefaultIdleTimeout,
		publisher:   events.Discard,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, o.inMemory, badger.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	repos, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	c := &Concierge{repos: repos, logger: o.logger}
	if err := c.build(ctx, o); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Concierge) build(ctx context.Context, o *options) error {
	validator, err := vocabulary.NewValidator(vocabulary.WithLogger(o.logger))
	if err != nil {
		return err
	}
	c.validator = validator

	chain := vocabulary.Chain{c.repos.Vocabulary, vocabulary.DefaultSource()}
	if o.vocabulary != nil {
		chain = append(vocabulary.Chain{o.vocabulary}, chain...)
	}
	source, err := vocabulary.NewCachedSource(chain, o.cacheTTL)
	if err != nil {
		return err
	}
	c.source = source

	loader, err := vocabulary.NewLoader(
		source,
		validator,
		vocabulary.WithLoaderLogger(o.logger),
	)
	if err != nil {
		return err
	}
	c.loader = loader
	if err := loader.Load(ctx); err != nil {
		return err
	}

	extractor, err := extraction.NewExtractor(validator, extraction.WithLogger(o.logger))
	if err != nil {
		return err
	}

	var next relaxation.Querier = relaxation.QuerierFunc(c.repos.Catalog.QueryResidences)
	if o.querier != nil {
		next = o.querier
	}
	querier, err := relaxation.NewCachedQuerier(next, o.cacheTTL)
	if err != nil {
		return err
	}
	c.querier = querier

	engineOpts := []relaxation.Option{
		relaxation.WithLogger(o.logger),
		relaxation.WithQueryTimeout(o.timeout),
	}
	if o.priority != nil {
		engineOpts = append(engineOpts, relaxation.WithPriority(o.priority...))
	}
	engine, err := relaxation.NewEngine(querier, engineOpts...)
	if err != nil {
		return err
	}

	rankerOpts := []ranking.Option{ranking.WithLogger(o.logger)}
	if o.weights != nil {
		rankerOpts = append(rankerOpts, ranking.WithWeights(o.weights))
	}
	ranker, err := ranking.NewRanker(rankerOpts...)
	if err != nil {
		return err
	}

	var responder ai.Responder = ai.Template{}
	if o.aiConfig != nil {
		provider, err := openai.NewProvider(o.aiConfig)
		if err != nil {
			return err
		}
		c.provider = provider
		responder = provider.Responder()
	}

	sessions := o.sessions
	if sessions == nil {
		sessions = c.repos.Sessions
	}
	manager, err := session.NewManager(sessions, extractor, engine, ranker,
		session.WithIdleTimeout(o.idleTimeout),
		session.WithResponder(responder),
		session.WithPublisher(o.publisher),
		session.WithLogger(o.logger),
	)
	if err != nil {
		return err
	}
	c.manager = manager
	return nil
}

// Close releases the AI provider, the worker pools and the store.
func (c *Concierge) Close() error {
	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logger.Error("error closing AI provider", "err", err)
		}
	}
	if c.loader != nil {
		c.loader.Release()
	}
	if err := c.repos.Close(); err != nil {
		c.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// Sessions returns the session manager.
func (c *Concierge) Sessions() *session.Manager {
	return c.manager
}

// Catalog returns the residence catalog.
func (c *Concierge) Catalog() storage.CatalogRepository {
	return c.repos.Catalog
}

// Vocabulary returns the stored vocabularies.
func (c *Concierge) Vocabulary() storage.VocabularyRepository {
	return c.repos.Vocabulary
}

// Checkpoints returns the checkpoint store.
func (c *Concierge) Checkpoints() storage.CheckpointRepository {
	return c.repos.Checkpoints
}

// Validator returns the live vocabulary validator.
func (c *Concierge) Validator() *vocabulary.Validator {
	return c.validator
}

// ReloadVocabulary reloads every vocabulary from the store and drops cached candidates.
func (c *Concierge) ReloadVocabulary(ctx context.Context) error {
	c.source.Invalidate()
	c.querier.Flush()
	return c.loader.Load(ctx)
}

// NewIngestionPipeline returns a pipeline that writes to the local catalog.
// Vocabularies it derives are registered with the live validator.
func (c *Concierge) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	listener := func(field core.Field, values []string) {
		c.validator.Register(field, values)
		c.source.Invalidate(field)
		c.querier.Flush()
	}
	opts = append([]ingestion.Option{
		ingestion.WithLogger(c.logger),
		ingestion.WithVocabularyListener(listener),
	}, opts...)
	return ingestion.NewPipeline(c.repos.Catalog, c.repos.Vocabulary, opts...)
}

// NewRefresher returns a refresher that copies pages from pager into the local
// catalog through an ingestion pipeline. Call the returned release func when done.
func (c *Concierge) NewRefresher(pager refresh.Pager, config *refresh.Config, progress io.Writer, opts ...ingestion.Option) (*refresh.Refresher, func(), error) {
	pipeline, err := c.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, nil, err
	}
	refresher, err := refresh.NewRefresher(pager, pipeline, c.repos.Checkpoints, config, progress)
	if err != nil {
		pipeline.Release()
		return nil, nil, err
	}
	return refresher, pipeline.Release, nil
}
