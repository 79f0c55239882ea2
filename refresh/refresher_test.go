package refresh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/poiesic/concierge/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager serves a fixed catalog and can fail specific pages a set number of times.
type fakePager struct {
	mu       sync.Mutex
	catalog  []*core.Residence
	failures map[int]int
	calls    []int
}

func newFakePager(n int) *fakePager {
	p := &fakePager{failures: map[int]int{}}
	for i := 1; i <= n; i++ {
		p.catalog = append(p.catalog, &core.Residence{Id: fmt.Sprintf("r%02d", i), Name: fmt.Sprintf("Residence %d", i)})
	}
	return p
}

func (p *fakePager) ListResidences(_ context.Context, page, limit int) (*upstream.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, page)
	if p.failures[page] > 0 {
		p.failures[page]--
		return nil, fmt.Errorf("%w: flaky", core.ErrUpstreamUnavailable)
	}
	start := min((page-1)*limit, len(p.catalog))
	end := min(start+limit, len(p.catalog))
	return &upstream.Page{Residences: p.catalog[start:end], Page: page, Limit: limit, Total: len(p.catalog)}, nil
}

type fakeIngester struct {
	ids    []string
	failOn int
	calls  int
}

func (f *fakeIngester) Ingest(_ context.Context, residences []*core.Residence) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("disk full")
	}
	for _, r := range residences {
		f.ids = append(f.ids, r.Id)
	}
	return nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.PageSize = 4
	cfg.ReportInterval = 4
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestRefresher_Run(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	pager := newFakePager(10)
	ingester := &fakeIngester{}
	var out bytes.Buffer

	r, err := NewRefresher(pager, ingester, repos.Checkpoints, testConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 10, stats.Residences)
	assert.False(t, stats.Resumed)
	assert.Len(t, ingester.ids, 10)
	assert.Equal(t, []int{1, 2, 3}, pager.calls)
	assert.Contains(t, out.String(), "Refresh complete")

	cp, err := repos.Checkpoints.LoadCheckpoint(context.Background(), CheckpointName)
	require.NoError(t, err)
	assert.Nil(t, cp, "checkpoint should be cleared after a full run")
}

func TestRefresher_Resume(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	pager := newFakePager(10)
	ingester := &fakeIngester{failOn: 2}

	r, err := NewRefresher(pager, ingester, repos.Checkpoints, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	require.Error(t, err)
	assert.Len(t, ingester.ids, 4)

	cp, err := repos.Checkpoints.LoadCheckpoint(ctx, CheckpointName)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 1, cp.Page)

	pager.calls = nil
	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Resumed)
	assert.Equal(t, []int{2, 3}, pager.calls)
	assert.Len(t, ingester.ids, 10)
}

func TestRefresher_RetriesTransientFailures(t *testing.T) {
	pager := newFakePager(6)
	pager.failures[2] = 2
	ingester := &fakeIngester{}

	r, err := NewRefresher(pager, ingester, nil, testConfig(), nil)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Residences)
	assert.Equal(t, []int{1, 2, 2, 2}, pager.calls)
}

func TestRefresher_GivesUp(t *testing.T) {
	pager := newFakePager(6)
	pager.failures[1] = 5

	r, err := NewRefresher(pager, &fakeIngester{}, nil, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
	assert.Len(t, pager.calls, 3)
}

func TestRefresher_EmptyCatalog(t *testing.T) {
	var out bytes.Buffer
	r, err := NewRefresher(newFakePager(0), &fakeIngester{}, nil, testConfig(), &out)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Residences)
	assert.Contains(t, out.String(), "0 residences")
}

func TestNewRefresher_Required(t *testing.T) {
	_, err := NewRefresher(nil, &fakeIngester{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrPagerRequired)

	_, err = NewRefresher(newFakePager(1), nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrIngesterRequired)
}
