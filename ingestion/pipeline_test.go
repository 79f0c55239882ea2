package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRankings struct {
	mu     sync.Mutex
	scores map[string][]core.RankingScore
	calls  int
}

func (f *fakeRankings) Rankings(_ context.Context, id string) ([]core.RankingScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	scores, ok := f.scores[id]
	if !ok {
		return nil, errors.New("no rankings")
	}
	return scores, nil
}

func testResidences() []*core.Residence {
	return []*core.Residence{
		{Id: "r1", Name: "One", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Brand: "Aman", Amenities: []string{"Helipad", "Spa"}},
		{Id: "r2", Name: "Two", City: "London", Country: "UK", PriceMin: 2_000_000, Brand: "Four Seasons", Amenities: []string{"spa"}, Lifestyles: []string{"Urban"}},
	}
}

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, *badger.Repositories) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	p, err := NewPipeline(repos.Catalog, repos.Vocabulary, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, repos
}

func TestNewPipeline_RequiresRepositories(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewPipeline(nil, repos.Vocabulary)
	assert.ErrorIs(t, err, ErrCatalogRequired)

	_, err = NewPipeline(repos.Catalog, nil)
	assert.ErrorIs(t, err, ErrVocabularyRepositoryRequired)
}

func TestIngest_StoresResidences(t *testing.T) {
	p, repos := setupPipeline(t)
	ctx := context.Background()

	require.NoError(t, p.Ingest(ctx, testResidences()))
	p.Wait()

	count, err := repos.Catalog.CountResidences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.NoError(t, p.Ingest(ctx, nil))
}

func TestIngest_DerivesVocabularies(t *testing.T) {
	var mu sync.Mutex
	notified := map[core.Field][]string{}
	p, repos := setupPipeline(t, WithVocabularyListener(func(f core.Field, values []string) {
		mu.Lock()
		defer mu.Unlock()
		notified[f] = values
	}))
	ctx := context.Background()

	require.NoError(t, repos.Vocabulary.SaveVocabulary(ctx, core.FieldAmenities, []string{"Wine Cellar"}))
	require.NoError(t, p.Ingest(ctx, testResidences()))
	p.Wait()

	locations, err := repos.Vocabulary.LoadVocabulary(ctx, core.FieldLocation)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dubai", "London", "UAE", "UK"}, locations)

	amenities, err := repos.Vocabulary.LoadVocabulary(ctx, core.FieldAmenities)
	require.NoError(t, err)
	assert.Equal(t, []string{"Helipad", "Spa", "Wine Cellar"}, amenities)

	brands, err := repos.Vocabulary.LoadVocabulary(ctx, core.FieldBrand)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aman", "Four Seasons"}, brands)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, amenities, notified[core.FieldAmenities])
	assert.Equal(t, []string{"Urban"}, notified[core.FieldLifestyle])
}

func TestIngest_AttachesRankings(t *testing.T) {
	source := &fakeRankings{scores: map[string][]core.RankingScore{
		"r1": {{Position: 1, TotalScore: 97, Category: core.RankingCategory{Slug: "best-views"}}},
	}}
	p, repos := setupPipeline(t, WithRankingSource(source), WithPoolSize(2))
	ctx := context.Background()

	require.NoError(t, p.Ingest(ctx, testResidences()))
	p.Wait()

	r1, err := repos.Catalog.GetResidence(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, r1.Rankings, 1)
	assert.Equal(t, 1, r1.Rankings[0].Position)

	// r2 has no rankings upstream; it is stored without them
	r2, err := repos.Catalog.GetResidence(ctx, "r2")
	require.NoError(t, err)
	assert.Empty(t, r2.Rankings)
	assert.Equal(t, 2, source.calls)
}

func TestRebuild(t *testing.T) {
	p, repos := setupPipeline(t)
	ctx := context.Background()

	require.NoError(t, repos.Catalog.PutResidences(ctx, testResidences()...))
	require.NoError(t, p.Rebuild(ctx))

	lifestyles, err := repos.Vocabulary.LoadVocabulary(ctx, core.FieldLifestyle)
	require.NoError(t, err)
	assert.Equal(t, []string{"Urban"}, lifestyles)
}

func TestMergeValues(t *testing.T) {
	merged := mergeValues([]string{"Spa", "helipad"}, []string{"spa", " Wine Cellar ", "", "Helipad"})
	assert.Equal(t, []string{"helipad", "Spa", "Wine Cellar"}, merged)
	assert.Nil(t, mergeValues(nil, nil))
}

func TestDerive(t *testing.T) {
	derived := Derive(testResidences())
	assert.Equal(t, []string{"Helipad", "Spa"}, derived[core.FieldAmenities])
	assert.NotContains(t, derived, core.FieldBudget)
}
