package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/ai/mock"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/events"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/ranking"
	"github.com/poiesic/concierge/relaxation"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/poiesic/concierge/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []*core.Residence{
	{Id: "r1", Name: "Marina Heights", City: "Dubai", Country: "UAE", PriceMin: 6_000_000,
		Amenities: []string{"Helipad", "Wine Cellar"}, Brand: "Bulgari"},
	{Id: "r2", Name: "Palm Estate", City: "Dubai", Country: "UAE", PriceMin: 3_000_000,
		Amenities: []string{"Spa", "Private Pool"}, Brand: "Aman"},
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(t events.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type fixture struct {
	manager *Manager
	repos   *badger.Repositories
	clock   *clock
	events  *recorder
}

func catalogQuerier(catalog []*core.Residence) relaxation.Querier {
	return relaxation.QuerierFunc(func(_ context.Context, sel core.Selections) ([]*core.Residence, error) {
		var out []*core.Residence
		for _, r := range catalog {
			if core.Satisfies(r, sel) {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

func setup(t *testing.T, querier relaxation.Querier, opts ...Option) *fixture {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	v, err := vocabulary.NewValidator()
	require.NoError(t, err)
	v.Register(core.FieldBudget, core.BudgetBands)
	v.Register(core.FieldLocation, []string{"Dubai", "UAE", "London"})
	v.Register(core.FieldAmenities, []string{"Private Pool", "Spa", "Helipad", "Wine Cellar"})
	v.Register(core.FieldBrand, []string{"Aman", "Bulgari"})
	v.Register(core.FieldLifestyle, []string{"Golf", "Wellness"})

	extractor, err := extraction.NewExtractor(v)
	require.NoError(t, err)

	if querier == nil {
		require.NoError(t, repos.Catalog.PutResidences(context.Background(), testCatalog...))
		querier = relaxation.QuerierFunc(repos.Catalog.QueryResidences)
	}
	engine, err := relaxation.NewEngine(querier)
	require.NoError(t, err)

	ranker, err := ranking.NewRanker()
	require.NoError(t, err)

	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	opts = append([]Option{WithClock(c.Now), WithPublisher(rec)}, opts...)

	m, err := NewManager(repos.Sessions, extractor, engine, ranker, opts...)
	require.NoError(t, err)

	return &fixture{manager: m, repos: repos, clock: c, events: rec}
}

func resultIds(r *QueryResult) []string {
	out := make([]string, len(r.Residences))
	for i, s := range r.Residences {
		out[i] = s.Residence.Id
	}
	return out
}

func TestNewManager_RequiresDependencies(t *testing.T) {
	_, err := NewManager(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	f := setup(t, nil)
	_, err = NewManager(f.repos.Sessions, f.manager.extractor, f.manager.engine, f.manager.ranker, WithIdleTimeout(0))
	assert.ErrorIs(t, err, ErrInvalidIdleTimeout)
}

func TestCreate(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	meta := map[string]string{"channel": "web"}
	s, err := f.manager.Create(ctx, meta)
	require.NoError(t, err)

	assert.NotEmpty(t, s.Id)
	assert.Equal(t, core.SessionActive, s.Status)
	assert.Equal(t, f.clock.Now(), s.CreatedAt)
	assert.True(t, s.Selections.Empty())

	meta["channel"] = "changed"
	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, "web", stored.Metadata["channel"])
	assert.Equal(t, 1, f.events.count(events.SessionCreated))

	other, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, s.Id, other.Id)
}

func TestQuery_MatchesWithoutRelaxation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "in Dubai with a helipad")
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, resultIds(result))
	assert.Equal(t, 1.0, result.Residences[0].MatchScore)
	assert.False(t, result.Relaxed)
	assert.Empty(t, result.RelaxedFields)
	assert.NotNil(t, result.RelaxedFields)
	assert.Contains(t, result.FriendlyResponse, "I found 1 residence: Marina Heights")
	assert.NoError(t, result.Err())

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, "Dubai", stored.Selections.First(core.FieldLocation))
	assert.Equal(t, []string{"Helipad"}, stored.Selections.Get(core.FieldAmenities))
	assert.Equal(t, 1, stored.Turns)
}

func TestQuery_RelaxesConstraints(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "in Dubai with a helipad, by Aman")
	require.NoError(t, err)

	assert.True(t, result.Relaxed)
	assert.Equal(t, []core.Field{core.FieldBrand}, result.RelaxedFields)
	require.NotEmpty(t, result.Residences)
	assert.Equal(t, "r1", result.Residences[0].Residence.Id)
	assert.Contains(t, result.FriendlyResponse, "relaxed brand")
	assert.Equal(t, 1, f.events.count(events.ConstraintsRelaxed))

	// Relaxation never removes what the user asked for
	assert.Equal(t, "Aman", result.Selections.First(core.FieldBrand))
}

func TestQuery_Exhausted(t *testing.T) {
	f := setup(t, catalogQuerier(nil))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "in London")
	require.NoError(t, err)

	assert.True(t, result.Exhausted)
	assert.Empty(t, result.Residences)
	assert.Equal(t, []core.Field{core.FieldLocation}, result.RelaxedFields)
	assert.ErrorIs(t, result.Err(), core.ErrNoMatchesAfterFullRelaxation)
	assert.Contains(t, result.FriendlyResponse, "couldn't find")
	assert.Equal(t, 1, f.events.count(events.SearchExhausted))
}

func TestQuery_NothingUnderstood(t *testing.T) {
	var calls atomic.Int32
	f := setup(t, relaxation.QuerierFunc(func(context.Context, core.Selections) ([]*core.Residence, error) {
		calls.Add(1)
		return nil, nil
	}))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "something with unicorns")
	require.NoError(t, err)

	assert.Empty(t, result.Residences)
	assert.False(t, result.Exhausted)
	assert.NotEmpty(t, result.Ignored)
	assert.Contains(t, result.FriendlyResponse, "Tell me what you're looking for")
	assert.Zero(t, calls.Load())
}

func TestQuery_AmbiguousValueThenReply(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "with a pool")
	require.NoError(t, err)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, core.FieldAmenities, result.Pending[0].Field)
	assert.Contains(t, result.FriendlyResponse, "Private Pool")
	assert.Equal(t, 1, f.events.count(events.SuggestionPending))

	result, err = f.manager.Query(ctx, s.Id, "1")
	require.NoError(t, err)
	assert.Empty(t, result.Pending)
	assert.Equal(t, []string{"Private Pool"}, result.Selections.Get(core.FieldAmenities))
	assert.Equal(t, "r2", result.Residences[0].Residence.Id)
}

func TestQuery_FailedQueryLeavesSessionUntouched(t *testing.T) {
	f := setup(t, relaxation.QuerierFunc(func(context.Context, core.Selections) ([]*core.Residence, error) {
		return nil, core.ErrUpstreamTimeout
	}))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	_, err = f.manager.Query(ctx, s.Id, "in Dubai")
	assert.ErrorIs(t, err, core.ErrUpstreamTimeout)
	assert.Equal(t, core.KindUpstreamTimeout, core.KindOf(err))

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.True(t, stored.Selections.Empty())
	assert.Zero(t, stored.Turns)
}

func TestQueryWithRetry(t *testing.T) {
	var calls atomic.Int32
	f := setup(t, relaxation.QuerierFunc(func(_ context.Context, sel core.Selections) ([]*core.Residence, error) {
		if calls.Add(1) == 1 {
			return nil, core.ErrUpstreamUnavailable
		}
		return testCatalog, nil
	}))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.QueryWithRetry(ctx, s.Id, "in Dubai", 3, time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, result.Residences, 2)
	assert.Equal(t, int32(2), calls.Load())

	// Session errors are not retried
	_, err = f.manager.QueryWithRetry(ctx, "missing", "in Dubai", 3, time.Millisecond)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ResponderFallback(t *testing.T) {
	responder := mock.NewMockResponder().WithRespondFunc(func(context.Context, *ai.Turn) (string, error) {
		return "", errors.New("model offline")
	})
	f := setup(t, nil, WithResponder(responder))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "in Dubai")
	require.NoError(t, err)

	assert.Equal(t, 1, responder.CallCount())
	assert.Contains(t, result.FriendlyResponse, "I found 2 residences")
}

func TestQuery_UsesResponder(t *testing.T) {
	responder := mock.NewMockResponder().WithRespondFunc(func(_ context.Context, turn *ai.Turn) (string, error) {
		return "Here you go.", nil
	})
	f := setup(t, nil, WithResponder(responder))
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	result, err := f.manager.Query(ctx, s.Id, "in Dubai")
	require.NoError(t, err)

	assert.Equal(t, "Here you go.", result.FriendlyResponse)
	turn := responder.LastTurn()
	require.NotNil(t, turn)
	assert.Equal(t, "in Dubai", turn.Message)
	assert.Equal(t, []core.Field{core.FieldLocation}, turn.Applied)
	assert.Len(t, turn.Results, 2)
}

func TestQuery_UnknownSession(t *testing.T) {
	f := setup(t, nil)

	_, err := f.manager.Query(context.Background(), "missing", "in Dubai")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Equal(t, core.KindSessionNotFound, core.KindOf(err))

	_, err = f.manager.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestEnd(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	ended, err := f.manager.End(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SessionCompleted, ended.Status)
	assert.Equal(t, f.clock.Now(), ended.EndedAt)
	assert.Equal(t, 1, f.events.count(events.SessionCompleted))

	_, err = f.manager.Query(ctx, s.Id, "in Dubai")
	assert.ErrorIs(t, err, core.ErrSessionCompleted)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = f.manager.End(ctx, s.Id)
	assert.ErrorIs(t, err, core.ErrSessionCompleted)

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SessionCompleted, stored.Status)
}

func TestExpiry_IsLazyAndFinal(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	f.clock.Advance(DefaultIdleTimeout - time.Second)
	_, err = f.manager.Query(ctx, s.Id, "in Dubai")
	require.NoError(t, err)

	// The message above reset the idle timer
	f.clock.Advance(DefaultIdleTimeout - time.Second)
	_, err = f.manager.Query(ctx, s.Id, "with a spa")
	require.NoError(t, err)

	f.clock.Advance(DefaultIdleTimeout + time.Second)
	_, err = f.manager.Query(ctx, s.Id, "by Aman")
	assert.ErrorIs(t, err, core.ErrSessionExpired)
	assert.Equal(t, core.KindSessionExpired, core.KindOf(err))

	_, err = f.manager.Query(ctx, s.Id, "by Aman")
	assert.ErrorIs(t, err, core.ErrSessionExpired)

	_, err = f.manager.End(ctx, s.Id)
	assert.ErrorIs(t, err, core.ErrSessionExpired)

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SessionExpired, stored.Status)
	assert.False(t, stored.Selections.Has(core.FieldBrand))
	assert.Equal(t, 1, f.events.count(events.SessionExpired))
}

func TestExpireIdle(t *testing.T) {
	f := setup(t, nil, WithIdleTimeout(10*time.Minute))
	ctx := context.Background()

	stale, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)
	fresh, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	f.clock.Advance(8 * time.Minute)
	_, err = f.manager.Query(ctx, fresh.Id, "in Dubai")
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	n, err := f.manager.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := f.repos.Sessions.GetSession(ctx, stale.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SessionExpired, s.Status)

	s, err = f.repos.Sessions.GetSession(ctx, fresh.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SessionActive, s.Status)

	n, err = f.manager.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	f := setup(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.manager.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestAcceptSuggestionAndAddCustom(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	updated, err := f.manager.AcceptSuggestion(ctx, s.Id, core.FieldBrand, "aman")
	require.NoError(t, err)
	assert.Equal(t, "Aman", updated.Selections.First(core.FieldBrand))

	_, err = f.manager.AcceptSuggestion(ctx, s.Id, core.FieldBrand, "Ritz")
	assert.ErrorIs(t, err, extraction.ErrNotCanonical)

	updated, err = f.manager.AddCustom(ctx, s.Id, core.FieldAmenities, "Bowling Alley")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bowling Alley"}, updated.Selections.Custom[core.FieldAmenities])
	assert.False(t, updated.Selections.Has(core.FieldAmenities))

	_, err = f.manager.AddCustom(ctx, s.Id, core.FieldAmenities, " ")
	assert.ErrorIs(t, err, extraction.ErrEmptyValue)

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, "Aman", stored.Selections.First(core.FieldBrand))
	assert.Equal(t, []string{"Bowling Alley"}, stored.Selections.Custom[core.FieldAmenities])
}

func TestQuery_SerializedPerSession(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	s, err := f.manager.Create(ctx, nil)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.Query(ctx, s.Id, "in Dubai")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.manager.Get(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, n, stored.Turns)
	assert.Zero(t, f.manager.locks.size())
}
