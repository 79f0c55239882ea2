package vocabulary

import (
	"context"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/poiesic/concierge/core"
)

// Source supplies canonical vocabulary lists.
type Source interface {
	Fetch(ctx context.Context, field core.Field) ([]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, field core.Field) ([]string, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, field core.Field) ([]string, error) {
	return f(ctx, field)
}

// StaticSource serves fixed lists. Fields it does not know return an empty list.
type StaticSource map[core.Field][]string

// Fetch returns a copy of the list for field.
func (s StaticSource) Fetch(_ context.Context, field core.Field) ([]string, error) {
	return slices.Clone(s[field]), nil
}

// DefaultSource holds vocabularies that do not come from the catalog.
func DefaultSource() StaticSource {
	return StaticSource{core.FieldBudget: slices.Clone(core.BudgetBands)}
}

// CachedSource memoizes another Source for a fixed TTL.
type CachedSource struct {
	source Source
	cache  *gocache.Cache
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps source with an in-memory cache.
func NewCachedSource(source Source, ttl time.Duration) (*CachedSource, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	return &CachedSource{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}, nil
}

// Fetch returns the cached list for field, loading it on a miss.
func (c *CachedSource) Fetch(ctx context.Context, field core.Field) ([]string, error) {
	if v, ok := c.cache.Get(string(field)); ok {
		return slices.Clone(v.([]string)), nil
	}
	values, err := c.source.Fetch(ctx, field)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(string(field), slices.Clone(values))
	return values, nil
}

// Invalidate drops cached lists. With no fields, everything is dropped.
func (c *CachedSource) Invalidate(fields ...core.Field) {
	if len(fields) == 0 {
		c.cache.Flush()
		return
	}
	for _, f := range fields {
		c.cache.Delete(string(f))
	}
}

// Chain tries sources in order and returns the first non-empty list.
type Chain []Source

// Fetch implements Source.
func (c Chain) Fetch(ctx context.Context, field core.Field) ([]string, error) {
	for _, s := range c {
		values, err := s.Fetch(ctx, field)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			return values, nil
		}
	}
	return nil, nil
}
