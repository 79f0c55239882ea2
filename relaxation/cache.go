package relaxation

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/poiesic/concierge/core"
)

// CachedQuerier memoizes query results by selection fingerprint.
// Empty results are cached too, so repeated relaxation walks stay cheap.
type CachedQuerier struct {
	next  Querier
	cache *gocache.Cache
}

var _ Querier = (*CachedQuerier)(nil)

// NewCachedQuerier wraps next with a cache whose entries live for ttl.
func NewCachedQuerier(next Querier, ttl time.Duration) (*CachedQuerier, error) {
	if next == nil {
		return nil, ErrQuerierRequired
	}
	return &CachedQuerier{next: next, cache: gocache.New(ttl, 2*ttl)}, nil
}

// Query returns the cached candidates for selections, querying next on a miss.
// Errors are not cached.
func (c *CachedQuerier) Query(ctx context.Context, selections core.Selections) ([]*core.Residence, error) {
	key := strconv.FormatUint(uint64(selections.Fingerprint()), 16)
	if v, ok := c.cache.Get(key); ok {
		return v.([]*core.Residence), nil
	}
	candidates, err := c.next.Query(ctx, selections)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, candidates)
	return candidates, nil
}

// Flush drops every cached result.
func (c *CachedQuerier) Flush() {
	c.cache.Flush()
}
