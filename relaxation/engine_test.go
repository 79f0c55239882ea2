package relaxation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogQuerier(catalog []*core.Residence, calls *atomic.Int32) Querier {
	return QuerierFunc(func(_ context.Context, sel core.Selections) ([]*core.Residence, error) {
		if calls != nil {
			calls.Add(1)
		}
		var out []*core.Residence
		for _, r := range catalog {
			if core.Satisfies(r, sel) {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

var uaeCatalog = []*core.Residence{
	{Id: "r1", Name: "Marina Heights", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, PriceMax: 8_000_000,
		Amenities: []string{"Helipad", "Wine Cellar"}, Brand: "Bulgari"},
	{Id: "r2", Name: "Palm Estate", City: "Dubai", Country: "UAE", PriceMin: 3_000_000,
		Amenities: []string{"Spa"}, Brand: "Aman"},
}

func scenarioSelections() core.Selections {
	sel := core.NewSelections()
	sel.Set(core.FieldBudget, core.Budget5MPlus)
	sel.Set(core.FieldLocation, "UAE")
	sel.Set(core.FieldAmenities, "Helipad", "Wine Cellar")
	sel.Set(core.FieldBrand, "Aman")
	return sel
}

func TestResolve_NoRelaxationNeeded(t *testing.T) {
	e, err := NewEngine(catalogQuerier(uaeCatalog, nil))
	require.NoError(t, err)

	sel := core.NewSelections()
	sel.Set(core.FieldLocation, "Dubai")

	result, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)

	assert.Len(t, result.Candidates, 2)
	assert.Empty(t, result.RelaxedFields)
	assert.False(t, result.Relaxed())
	assert.NoError(t, result.Err())
	assert.Equal(t, 1, result.Queries)
}

func TestResolve_DropsBrandFirst(t *testing.T) {
	e, err := NewEngine(catalogQuerier(uaeCatalog, nil))
	require.NoError(t, err)
	sel := scenarioSelections()

	result, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, []core.Field{core.FieldBrand}, result.RelaxedFields)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "r1", result.Candidates[0].Id)
	assert.False(t, result.Working.Has(core.FieldBrand))

	// the caller's selections are untouched
	assert.Equal(t, "Aman", sel.First(core.FieldBrand))
}

func TestResolve_Deterministic(t *testing.T) {
	e, err := NewEngine(catalogQuerier([]*core.Residence{
		{Id: "x", Name: "Elsewhere", City: "Lisbon", Country: "Portugal", PriceMin: 500_000},
	}, nil))
	require.NoError(t, err)
	sel := scenarioSelections()
	sel.Set(core.FieldLifestyle, "Golf")

	first, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)
	second, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)

	want := []core.Field{core.FieldBrand, core.FieldAmenities, core.FieldLifestyle, core.FieldLocation, core.FieldBudget}
	assert.Equal(t, want, first.RelaxedFields)
	assert.Equal(t, first.RelaxedFields, second.RelaxedFields)
	assert.Len(t, first.Candidates, 1)
	assert.False(t, first.Exhausted)
}

func TestResolve_SkipsUnsetFields(t *testing.T) {
	var calls atomic.Int32
	e, err := NewEngine(catalogQuerier(uaeCatalog, &calls))
	require.NoError(t, err)

	sel := core.NewSelections()
	sel.Set(core.FieldLocation, "Paris")
	sel.Set(core.FieldBudget, core.Budget2To5M)

	result, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, []core.Field{core.FieldLocation}, result.RelaxedFields)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "r2", result.Candidates[0].Id)
}

func TestResolve_Exhausted(t *testing.T) {
	e, err := NewEngine(catalogQuerier(nil, nil))
	require.NoError(t, err)

	result, err := e.Resolve(context.Background(), scenarioSelections())
	require.NoError(t, err)

	assert.True(t, result.Exhausted)
	assert.Empty(t, result.Candidates)
	assert.Len(t, result.RelaxedFields, 4)
	assert.ErrorIs(t, result.Err(), core.ErrNoMatchesAfterFullRelaxation)
	assert.True(t, result.Working.Empty())
}

func TestResolve_IgnoresCustomValues(t *testing.T) {
	e, err := NewEngine(catalogQuerier(uaeCatalog, nil))
	require.NoError(t, err)

	sel := core.NewSelections()
	sel.AddCustom(core.FieldAmenities, "bowling alley")

	result, err := e.Resolve(context.Background(), sel)
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 2)
	assert.Empty(t, result.RelaxedFields)
}

func TestResolve_CustomPriority(t *testing.T) {
	e, err := NewEngine(catalogQuerier(uaeCatalog, nil), WithPriority(
		core.FieldAmenities, core.FieldBrand, core.FieldLifestyle, core.FieldLocation, core.FieldBudget))
	require.NoError(t, err)

	result, err := e.Resolve(context.Background(), scenarioSelections())
	require.NoError(t, err)

	// dropping amenities alone leaves Aman with a $5M+ budget, which nothing offers
	assert.Equal(t, []core.Field{core.FieldAmenities, core.FieldBrand}, result.RelaxedFields)
}

func TestWithPriority_Invalid(t *testing.T) {
	q := catalogQuerier(nil, nil)

	_, err := NewEngine(q, WithPriority(core.FieldBrand))
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = NewEngine(q, WithPriority(core.FieldBrand, core.FieldBrand, core.FieldLifestyle, core.FieldLocation, core.FieldBudget))
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = NewEngine(nil)
	assert.ErrorIs(t, err, ErrQuerierRequired)
}

func TestResolve_QueryTimeout(t *testing.T) {
	slow := QuerierFunc(func(ctx context.Context, _ core.Selections) ([]*core.Residence, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	e, err := NewEngine(slow, WithQueryTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = e.Resolve(context.Background(), scenarioSelections())
	assert.ErrorIs(t, err, core.ErrUpstreamTimeout)
	assert.Equal(t, core.KindUpstreamTimeout, core.KindOf(err))
}

func TestResolve_QueryError(t *testing.T) {
	boom := errors.New("boom")
	e, err := NewEngine(QuerierFunc(func(context.Context, core.Selections) ([]*core.Residence, error) {
		return nil, boom
	}))
	require.NoError(t, err)

	_, err = e.Resolve(context.Background(), scenarioSelections())
	assert.ErrorIs(t, err, boom)
}

type recordingMonitor struct {
	noopMonitor
	relaxed []core.Field
	queries int
}

func (m *recordingMonitor) Relaxed(f core.Field, _ core.Selections) { m.relaxed = append(m.relaxed, f) }
func (m *recordingMonitor) Queried(_ core.Selections, _ int)       { m.queries++ }

func TestResolve_Monitor(t *testing.T) {
	m := &recordingMonitor{}
	e, err := NewEngine(catalogQuerier(uaeCatalog, nil), WithMonitor(m))
	require.NoError(t, err)

	_, err = e.Resolve(context.Background(), scenarioSelections())
	require.NoError(t, err)

	assert.Equal(t, []core.Field{core.FieldBrand}, m.relaxed)
	assert.Equal(t, 2, m.queries)
}

func TestCachedQuerier(t *testing.T) {
	var calls atomic.Int32
	cached, err := NewCachedQuerier(catalogQuerier(uaeCatalog, &calls), time.Minute)
	require.NoError(t, err)

	e, err := NewEngine(cached)
	require.NoError(t, err)

	for range 3 {
		_, err := e.Resolve(context.Background(), scenarioSelections())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())

	cached.Flush()
	_, err = e.Resolve(context.Background(), scenarioSelections())
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}
