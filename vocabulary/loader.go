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


package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/concierge/core"
)

// Loader fetches vocabularies from a Source and registers them with a Validator.
// Fields are fetched concurrently on a worker pool.
type Loader struct {
	source    Source
	validator *Validator
	pool      *ants.Pool
	logger    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithWorkers sets the number of concurrent fetches. Default is one per field.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) error {
		if n < 1 {
			n = 1
		}
		if l.pool != nil {
			l.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithLoaderLogger sets a custom logger.
// Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader.
func NewLoader(source Source, validator *Validator, opts ...LoaderOption) (*Loader, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if validator == nil {
		return nil, ErrValidatorRequired
	}

	pool, err := ants.NewPool(len(core.AllFields))
	if err != nil {
		return nil, err
	}

	l := &Loader{
		source:    source,
		validator: validator,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// Load fetches and registers the given fields, or every field when none are given.
// A field that fails to load keeps its previous domain; all failures are returned joined.
func (l *Loader) Load(ctx context.Context, fields ...core.Field) error {
	if len(fields) == 0 {
		fields = core.AllFields
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, field := range fields {
		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()
			values, err := l.source.Fetch(ctx, field)
			if err != nil {
				l.logger.Warn("failed to load vocabulary", "field", field, "err", err)
				fail(fmt.Errorf("load %s vocabulary: %w", field, err))
				return
			}
			l.validator.Register(field, values)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("load %s vocabulary: %w", field, submitErr))
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Release releases the worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
