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
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/concierge/core"
)

const (
	// DefaultAcceptanceThreshold is the similarity at or above which a value is accepted without prompting.
	DefaultAcceptanceThreshold = 0.88
	// DefaultSimilarityFloor is the minimum similarity for a suggestion.
	DefaultSimilarityFloor = 0.6
	// DefaultMaxSuggestions caps the number of suggestions returned.
	DefaultMaxSuggestions = 3
)

type entry struct {
	canonical  string
	normalized string
}

// Validator checks raw values against per-field canonical vocabularies.
// It is safe for concurrent use; Register swaps a field's domain atomically.
type Validator struct {
	mu             sync.RWMutex
	domains        map[core.Field][]entry
	acceptance     float64
	floor          float64
	maxSuggestions int
	logger         *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator) error

// WithAcceptanceThreshold sets the similarity needed to accept a value outright.
func WithAcceptanceThreshold(threshold float64) Option {
	return func(v *Validator) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("%w: acceptance threshold %v", ErrInvalidThreshold, threshold)
		}
		v.acceptance = threshold
		return nil
	}
}

// WithSimilarityFloor sets the minimum similarity for a suggestion.
func WithSimilarityFloor(floor float64) Option {
	return func(v *Validator) error {
		if floor < 0 || floor > 1 {
			return fmt.Errorf("%w: similarity floor %v", ErrInvalidThreshold, floor)
		}
		v.floor = floor
		return nil
	}
}

// WithMaxSuggestions sets how many suggestions are returned at most.
func WithMaxSuggestions(n int) Option {
	return func(v *Validator) error {
		if n < 1 {
			n = 1
		}
		v.maxSuggestions = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// NewValidator creates a Validator with no registered domains.
func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{
		domains:        make(map[core.Field][]entry),
		acceptance:     DefaultAcceptanceThreshold,
		floor:          DefaultSimilarityFloor,
		maxSuggestions: DefaultMaxSuggestions,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if v.floor > v.acceptance {
		return nil, fmt.Errorf("%w: floor %v above acceptance %v", ErrInvalidThreshold, v.floor, v.acceptance)
	}

	return v, nil
}

// Register replaces the canonical domain for a field. Blank and duplicate
// (case-insensitive) entries are dropped.
func (v *Validator) Register(field core.Field, values []string) {
	field = fieldKey(field)

	entries := make([]entry, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		n := normalize(value)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		entries = append(entries, entry{canonical: value, normalized: n})
	}

	v.mu.Lock()
	v.domains[field] = entries
	v.mu.Unlock()

	v.logger.Debug("registered vocabulary", "field", field, "size", len(entries))
}

// Domain returns the canonical values registered for a field.
func (v *Validator) Domain(field core.Field) []string {
	entries := v.entries(field)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.canonical
	}
	return out
}

// Lookup returns the canonical spelling of raw if it is an exact
// (normalized) member of the field's domain.
func (v *Validator) Lookup(field core.Field, raw string) (string, bool) {
	n := normalize(raw)
	if n == "" {
		return "", false
	}
	for _, e := range v.entries(field) {
		if e.normalized == n {
			return e.canonical, true
		}
	}
	return "", false
}

// Validate checks raw against the domain registered for field.
//
// An empty raw value is invalid with no suggestions. A field with no registered
// domain treats every value as custom. Otherwise the best matches above the
// similarity floor are returned, and the value is valid when the best match
// reaches the acceptance threshold.
func (v *Validator) Validate(field core.Field, raw string) core.ValidationResult {
	field = fieldKey(field)
	result := core.ValidationResult{Field: field, Raw: raw}

	if strings.TrimSpace(raw) == "" {
		result.Message = "no value given"
		return result
	}

	entries := v.entries(field)
	if len(entries) == 0 {
		result.Custom = true
		result.Message = fmt.Sprintf("no vocabulary for %s; %q kept as a custom value", field, raw)
		return result
	}

	suggestions := make([]core.Suggestion, 0, len(entries))
	for _, e := range entries {
		score := Similarity(raw, e.canonical)
		if score >= v.floor {
			suggestions = append(suggestions, core.Suggestion{Value: e.canonical, Similarity: score})
		}
	}
	slices.SortFunc(suggestions, func(a, b core.Suggestion) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(suggestions) > v.maxSuggestions {
		suggestions = suggestions[:v.maxSuggestions]
	}
	result.Suggestions = suggestions

	top, ok := result.Top()
	if !ok {
		result.Message = fmt.Sprintf("%q does not match any known %s", raw, field)
		return result
	}

	result.Confidence = top.Similarity
	if top.Similarity >= v.acceptance {
		result.IsValid = true
		result.Canonical = top.Value
		if top.Similarity == 1 {
			result.Message = fmt.Sprintf("%q is a known %s", top.Value, field)
		} else {
			result.Message = fmt.Sprintf("interpreted %q as %q", raw, top.Value)
		}
		return result
	}

	result.Message = fmt.Sprintf("did you mean %q?", top.Value)
	return result
}

func (v *Validator) entries(field core.Field) []entry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.domains[fieldKey(field)]
}

func fieldKey(f core.Field) core.Field {
	return core.Field(strings.ToLower(strings.TrimSpace(string(f))))
}
