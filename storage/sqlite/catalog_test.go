package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *CatalogRepository {
	t.Helper()
	repo, err := OpenCatalog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seed(t *testing.T, repo *CatalogRepository) {
	t.Helper()
	err := repo.PutResidences(context.Background(),
		&core.Residence{Id: "r1", Name: "Palm Villas", City: "Dubai", Country: "UAE", PriceMin: 3_000_000, PriceMax: 4_500_000,
			Amenities: []string{"Private Pool", "Spa"}, Brand: "Aman",
			Rankings: []core.RankingScore{{Position: 1, TotalScore: 97, Category: core.RankingCategory{Slug: "best-spa"}}}},
		&core.Residence{Id: "r2", Name: "Alpine Lodge", City: "Zermatt", Country: "Switzerland", PriceMin: 800_000, PriceMax: 1_200_000,
			Lifestyles: []string{"Alpine"}},
		&core.Residence{Id: "r3", Name: "Marina Heights", City: "Dubai", Country: "UAE", PriceMin: 6_500_000,
			Amenities: []string{"Private Pool"}, Brand: "Bulgari"},
	)
	require.NoError(t, err)
}

func ids(rs []*core.Residence) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Id)
	}
	return out
}

func TestCatalog_RoundTrip(t *testing.T) {
	repo := openTest(t)
	seed(t, repo)
	ctx := context.Background()

	got, err := repo.GetResidence(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Palm Villas", got.Name)
	assert.Equal(t, []string{"Private Pool", "Spa"}, got.Amenities)
	require.Len(t, got.Rankings, 1)
	assert.Equal(t, "best-spa", got.Rankings[0].Category.Slug)
	assert.False(t, got.UpdatedAt.IsZero())

	_, err = repo.GetResidence(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	n, err := repo.CountResidences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCatalog_Replace(t *testing.T) {
	repo := openTest(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.PutResidences(ctx, &core.Residence{Id: "r1", Name: "Palm Villas II", City: "Dubai", PriceMin: 1}))

	got, err := repo.GetResidence(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Palm Villas II", got.Name)
	assert.Empty(t, got.Amenities)

	n, err := repo.CountResidences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCatalog_Query(t *testing.T) {
	repo := openTest(t)
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(s *core.Selections)
		want  []string
	}{
		{"all", func(*core.Selections) {}, []string{"r1", "r2", "r3"}},
		{"location ignores case", func(s *core.Selections) { s.Set(core.FieldLocation, "DUBAI") }, []string{"r1", "r3"}},
		{"country", func(s *core.Selections) { s.Set(core.FieldLocation, "Switzerland") }, []string{"r2"}},
		{"budget band overlap", func(s *core.Selections) { s.Set(core.FieldBudget, core.Budget1To2M) }, []string{"r2"}},
		{"budget open ended", func(s *core.Selections) { s.Set(core.FieldBudget, core.Budget5MPlus) }, []string{"r3"}},
		{"amenities checked in go", func(s *core.Selections) {
			s.Set(core.FieldLocation, "UAE")
			s.Set(core.FieldAmenities, "Spa")
		}, []string{"r1"}},
		{"brand", func(s *core.Selections) { s.Set(core.FieldBrand, "bulgari") }, []string{"r3"}},
		{"nothing", func(s *core.Selections) { s.Set(core.FieldLocation, "Tokyo") }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := core.NewSelections()
			tt.setup(&sel)
			got, err := repo.QueryResidences(ctx, sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCatalog_Delete(t *testing.T) {
	repo := openTest(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.DeleteResidence(ctx, "r2"))
	assert.ErrorIs(t, repo.DeleteResidence(ctx, "r2"), storage.ErrNotFound)

	all, err := repo.ListResidences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3"}, ids(all))
}

func TestCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	repo, err := OpenCatalog(path)
	require.NoError(t, err)
	seed(t, repo)
	require.NoError(t, repo.Close())

	reopened, err := OpenCatalog(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountResidences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBuildWhere(t *testing.T) {
	sel := core.NewSelections()
	where, args := buildWhere(sel)
	assert.Empty(t, where)
	assert.Empty(t, args)

	sel.Set(core.FieldLocation, "Dubai")
	sel.Set(core.FieldBudget, core.Budget2To5M)
	where, args = buildWhere(sel)
	assert.Equal(t, "(city = ? COLLATE NOCASE OR country = ? COLLATE NOCASE) AND MAX(price_max, price_min) >= ? AND price_min < ?", where)
	assert.Equal(t, []any{"Dubai", "Dubai", 2_000_000.0, 5_000_000.0}, args)
}

func TestCatalog_QueryInvalidBudget(t *testing.T) {
	repo := openTest(t)
	seed(t, repo)

	sel := core.NewSelections()
	sel.Set(core.FieldBudget, "$3M-$4M")
	_, err := repo.QueryResidences(context.Background(), sel)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}
