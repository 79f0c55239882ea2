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


package ranking

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/poiesic/concierge/core"
)

// Weights holds the importance of each field in the match score.
type Weights map[core.Field]float64

// DefaultWeights returns the built-in field weights.
func DefaultWeights() Weights {
	return Weights{
		core.FieldBudget:    3.0,
		core.FieldLocation:  2.5,
		core.FieldLifestyle: 1.5,
		core.FieldAmenities: 1.25,
		core.FieldBrand:     1.0,
	}
}

// Validate checks that every weight is for a known field and not negative.
func (w Weights) Validate() error {
	for f, weight := range w {
		if !f.Valid() {
			return fmt.Errorf("%w: %w: %s", ErrInvalidWeight, core.ErrUnknownField, f)
		}
		if weight < 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidWeight, f, weight)
		}
	}
	return nil
}

// Ranker scores and orders candidates against a selection set.
type Ranker struct {
	weights Weights
	limit   int
	logger  *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithWeights overrides field weights. Fields not listed keep their default.
func WithWeights(w Weights) Option {
	return func(r *Ranker) error {
		if err := w.Validate(); err != nil {
			return err
		}
		maps.Copy(r.weights, w)
		return nil
	}
}

// WithLimit caps the number of ranked results. Zero means no cap.
func WithLimit(n int) Option {
	return func(r *Ranker) error {
		if n < 0 {
			n = 0
		}
		r.limit = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a Ranker with the default weights.
func NewRanker(opts ...Option) (*Ranker, error) {
	r := &Ranker{
		weights: DefaultWeights(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Weights returns a copy of the active weights.
func (r *Ranker) Weights() Weights {
	return maps.Clone(r.weights)
}

// Score computes the match score of one residence.
//
// The score is the weighted mean satisfaction over the fields set in selections,
// in 0..1. Custom values do not count. With no canonical selections every
// residence scores 0.
func (r *Ranker) Score(res *core.Residence, selections core.Selections) (float64, []core.Field) {
	var total, earned float64
	var matched []core.Field
	for _, f := range selections.Fields() {
		w := r.weights[f]
		s := core.Satisfaction(res, f, selections.Values[f])
		total += w
		earned += w * s
		if s == 1 {
			matched = append(matched, f)
		}
	}
	if total == 0 {
		return 0, matched
	}
	return earned / total, matched
}

// Rank scores every candidate and returns them ordered by score descending,
// then by residence id ascending. The input slice is not modified.
func (r *Ranker) Rank(candidates []*core.Residence, selections core.Selections) []*core.ScoredResidence {
	scored := make([]*core.ScoredResidence, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		score, matched := r.Score(c, selections)
		scored = append(scored, &core.ScoredResidence{
			Residence:     c,
			MatchScore:    score,
			MatchedFields: matched,
		})
	}

	slices.SortStableFunc(scored, func(a, b *core.ScoredResidence) int {
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		return strings.Compare(a.Residence.Id, b.Residence.Id)
	})

	if r.limit > 0 && len(scored) > r.limit {
		scored = scored[:r.limit]
	}

	r.logger.Debug("ranked candidates", "count", len(scored))
	return scored
}
