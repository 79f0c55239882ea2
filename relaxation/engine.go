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


package relaxation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/concierge/core"
)

// DefaultPriority is the order in which fields are dropped when nothing matches,
// least discriminating first.
var DefaultPriority = []core.Field{
	core.FieldBrand,
	core.FieldAmenities,
	core.FieldLifestyle,
	core.FieldLocation,
	core.FieldBudget,
}

// Querier runs a candidate query. Every canonical value in the selections is a
// hard filter; custom values are ignored.
type Querier interface {
	Query(ctx context.Context, selections core.Selections) ([]*core.Residence, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(ctx context.Context, selections core.Selections) ([]*core.Residence, error)

// Query calls f.
func (f QuerierFunc) Query(ctx context.Context, selections core.Selections) ([]*core.Residence, error) {
	return f(ctx, selections)
}

// Engine finds candidates, dropping constraints in a fixed order until something matches.
type Engine struct {
	querier  Querier
	priority []core.Field
	timeout  time.Duration
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPriority sets the relaxation order. It must name every field exactly once.
func WithPriority(fields ...core.Field) Option {
	return func(e *Engine) error {
		if err := validatePriority(fields); err != nil {
			return err
		}
		e.priority = slices.Clone(fields)
		return nil
	}
}

// WithQueryTimeout bounds each candidate query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d < 0 {
			d = 0
		}
		e.timeout = d
		return nil
	}
}

// WithMonitor observes each query and relaxation step.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an Engine over querier.
func NewEngine(querier Querier, opts ...Option) (*Engine, error) {
	if querier == nil {
		return nil, ErrQuerierRequired
	}

	e := &Engine{
		querier:  querier,
		priority: slices.Clone(DefaultPriority),
		monitor:  noopMonitor{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Priority returns the relaxation order.
func (e *Engine) Priority() []core.Field {
	return slices.Clone(e.priority)
}

// Result is the outcome of Resolve.
type Result struct {
	Candidates    []*core.Residence
	RelaxedFields []core.Field   // Dropped fields, in removal order
	Working       core.Selections // The selections the candidates were found with
	Exhausted     bool            // Every constraint was dropped and nothing matched
	Queries       int
}

// Relaxed reports whether any constraint was dropped.
func (r *Result) Relaxed() bool {
	return len(r.RelaxedFields) > 0
}

// Err returns core.ErrNoMatchesAfterFullRelaxation for an exhausted result.
func (r *Result) Err() error {
	if r.Exhausted {
		return core.ErrNoMatchesAfterFullRelaxation
	}
	return nil
}

// Resolve queries with the canonical values of selections. While nothing matches it
// removes the next set field in priority order and queries again. Fields that are
// not set are skipped. The input is never modified.
//
// When every field has been removed the unconstrained result is returned. If that is
// still empty, Exhausted is set; this is reported through the result, not as an error.
// Errors are only returned for failed queries.
func (e *Engine) Resolve(ctx context.Context, selections core.Selections) (*Result, error) {
	working := selections.Canonical()
	result := &Result{}

	e.monitor.Start(working)

	candidates, err := e.query(ctx, working, result)
	if err != nil {
		return nil, err
	}

	for _, field := range e.priority {
		if len(candidates) > 0 {
			break
		}
		if !working.Has(field) {
			continue
		}

		working = working.Without(field)
		result.RelaxedFields = append(result.RelaxedFields, field)
		e.monitor.Relaxed(field, working)
		e.logger.Debug("relaxed constraint", "field", field, "remaining", len(working.Fields()))

		candidates, err = e.query(ctx, working, result)
		if err != nil {
			return nil, err
		}
	}

	result.Candidates = candidates
	result.Working = working
	result.Exhausted = len(candidates) == 0

	if result.Exhausted {
		e.logger.Info("no candidates after full relaxation", "relaxed", result.RelaxedFields)
	}
	e.monitor.Finish(result)
	return result, nil
}

func (e *Engine) query(ctx context.Context, working core.Selections, result *Result) ([]*core.Residence, error) {
	qctx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result.Queries++
	candidates, err := e.querier.Query(qctx, working)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, core.ErrUpstreamTimeout) {
			err = fmt.Errorf("%w: %w", core.ErrUpstreamTimeout, err)
		}
		e.monitor.Failed(err)
		return nil, err
	}
	e.monitor.Queried(working, len(candidates))
	return candidates, nil
}

func validatePriority(fields []core.Field) error {
	if len(fields) != len(core.AllFields) {
		return fmt.Errorf("%w: want %d fields, got %d", ErrInvalidPriority, len(core.AllFields), len(fields))
	}
	seen := make(map[core.Field]bool, len(fields))
	for _, f := range fields {
		if !f.Valid() {
			return fmt.Errorf("%w: %w: %s", ErrInvalidPriority, core.ErrUnknownField, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidPriority, f)
		}
		seen[f] = true
	}
	return nil
}
