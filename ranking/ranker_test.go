package ranking

import (
	"encoding/json"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates() []*core.Residence {
	return []*core.Residence{
		{Id: "c", Name: "C", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Amenities: []string{"Helipad"}},
		{Id: "a", Name: "A", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Amenities: []string{"Helipad", "Wine Cellar"}, Brand: "Aman"},
		{Id: "b", Name: "B", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Amenities: []string{"Helipad"}},
		{Id: "d", Name: "D", City: "London", Country: "UK", PriceMin: 1_500_000},
	}
}

func selections() core.Selections {
	sel := core.NewSelections()
	sel.Set(core.FieldBudget, core.Budget5MPlus)
	sel.Set(core.FieldLocation, "UAE")
	sel.Set(core.FieldAmenities, "Helipad", "Wine Cellar")
	sel.Set(core.FieldBrand, "Aman")
	return sel
}

func ids(scored []*core.ScoredResidence) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Residence.Id
	}
	return out
}

func TestRank_OrdersByScoreThenId(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)

	ranked := r.Rank(candidates(), selections())

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(ranked))
	assert.Equal(t, 1.0, ranked[0].MatchScore)
	assert.Equal(t, ranked[1].MatchScore, ranked[2].MatchScore)
	assert.Zero(t, ranked[3].MatchScore)
	assert.ElementsMatch(t, []core.Field{core.FieldBudget, core.FieldLocation, core.FieldAmenities, core.FieldBrand}, ranked[0].MatchedFields)
}

func TestRank_PartialCredit(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)

	score, matched := r.Score(candidates()[0], selections())

	// budget 3 + location 2.5 + half of amenities 1.25, out of 7.75
	assert.InDelta(t, (3+2.5+0.625)/7.75, score, 1e-9)
	assert.Equal(t, []core.Field{core.FieldBudget, core.FieldLocation}, matched)
}

func TestRank_Stable(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)

	first, err := json.Marshal(r.Rank(candidates(), selections()))
	require.NoError(t, err)

	reversed := candidates()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second, err := json.Marshal(r.Rank(reversed, selections()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRank_NoSelections(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)

	ranked := r.Rank(candidates(), core.NewSelections())

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(ranked))
	for _, s := range ranked {
		assert.Zero(t, s.MatchScore)
	}
}

func TestRank_Limit(t *testing.T) {
	r, err := NewRanker(WithLimit(2))
	require.NoError(t, err)

	assert.Len(t, r.Rank(candidates(), selections()), 2)
	assert.Empty(t, r.Rank(nil, selections()))
}

func TestWithWeights(t *testing.T) {
	r, err := NewRanker(WithWeights(Weights{core.FieldBrand: 10}))
	require.NoError(t, err)
	assert.Equal(t, 10.0, r.Weights()[core.FieldBrand])
	assert.Equal(t, 3.0, r.Weights()[core.FieldBudget])

	_, err = NewRanker(WithWeights(Weights{core.FieldBrand: -1}))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = NewRanker(WithWeights(Weights{"color": 1}))
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestAssignBadge(t *testing.T) {
	tests := []struct {
		position int
		want     core.BadgeTier
	}{
		{position: 1, want: core.BadgeGold},
		{position: 2, want: core.BadgeSilver},
		{position: 3, want: core.BadgeBronze},
		{position: 4, want: core.BadgeClassic},
		{position: 7, want: core.BadgeClassic},
		{position: 10, want: core.BadgeClassic},
		{position: 11, want: core.BadgeNone},
		{position: 500, want: core.BadgeNone},
		{position: 0, want: core.BadgeNone},
		{position: -3, want: core.BadgeNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AssignBadge(tt.position), "position %d", tt.position)
	}
}

func TestBadges(t *testing.T) {
	res := &core.Residence{Id: "r1", Rankings: []core.RankingScore{
		{Position: 2, TotalScore: 91.5, Category: core.RankingCategory{Slug: "best-spa"}},
		{Position: 14, TotalScore: 60, Category: core.RankingCategory{Slug: "best-views"}},
	}}

	badges := Badges(res)

	require.Len(t, badges, 2)
	assert.Equal(t, core.BadgeSilver, badges[0].Tier)
	assert.Equal(t, core.BadgeNone, badges[1].Tier)
	assert.Nil(t, Badges(nil))
}
