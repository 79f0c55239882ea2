package concierge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("create new store", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		c, err := New(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, c)
		defer c.Close()

		assert.NotNil(t, c.Sessions())
		assert.NotNil(t, c.Catalog())
		assert.NotNil(t, c.Vocabulary())
		assert.NotNil(t, c.Checkpoints())
		assert.Nil(t, c.provider)

		// Budget bands are always available
		result := c.Validator().Validate(core.FieldBudget, "$5m+")
		assert.True(t, result.IsValid)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		c, err := New(context.Background(), tmpFile)
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestConcierge_IngestThenChat(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, "", WithInMemory())
	require.NoError(t, err)
	defer c.Close()

	pipeline, err := c.NewIngestionPipeline()
	require.NoError(t, err)
	require.NoError(t, pipeline.Ingest(ctx, []*core.Residence{
		{Id: "r1", Name: "Marina Heights", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Amenities: []string{"Helipad"}},
		{Id: "r2", Name: "Mayfair House", City: "London", Country: "UK", PriceMin: 4_000_000, Amenities: []string{"Spa"}},
	}))
	pipeline.Release()

	// Derived vocabularies reach the live validator
	assert.True(t, c.Validator().Validate(core.FieldLocation, "dubai").IsValid)

	s, err := c.Sessions().Create(ctx, nil)
	require.NoError(t, err)

	result, err := c.Sessions().Query(ctx, s.Id, "in London with a spa")
	require.NoError(t, err)
	require.Len(t, result.Residences, 1)
	assert.Equal(t, "r2", result.Residences[0].Residence.Id)
	assert.False(t, result.Relaxed)
}

func TestConcierge_ReloadVocabulary(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, "", WithInMemory())
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Validator().Validate(core.FieldBrand, "Aman").IsValid)

	require.NoError(t, c.Vocabulary().SaveVocabulary(ctx, core.FieldBrand, []string{"Aman", "Bulgari"}))
	require.NoError(t, c.ReloadVocabulary(ctx))

	assert.True(t, c.Validator().Validate(core.FieldBrand, "aman").IsValid)
}

func TestNew_InvalidPriority(t *testing.T) {
	_, err := New(context.Background(), "", WithInMemory(), WithPriority(core.FieldBrand))
	assert.Error(t, err)
}
