package badger

import (
	"context"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyRepository(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	_, err = repos.Vocabulary.LoadVocabulary(ctx, core.FieldBrand)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	values, err := repos.Vocabulary.Fetch(ctx, core.FieldBrand)
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, repos.Vocabulary.SaveVocabulary(ctx, core.FieldBrand, []string{"Aman", "Bulgari"}))
	require.NoError(t, repos.Vocabulary.SaveVocabulary(ctx, core.FieldBrand, []string{"Aman", "Bulgari", "Six Senses"}))

	values, err = repos.Vocabulary.LoadVocabulary(ctx, core.FieldBrand)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aman", "Bulgari", "Six Senses"}, values)

	assert.ErrorIs(t, repos.Vocabulary.SaveVocabulary(ctx, "color", []string{"red"}), core.ErrUnknownField)
}

func TestCheckpointRepository(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	cp, err := repos.Checkpoints.LoadCheckpoint(ctx, "refresh")
	require.NoError(t, err)
	assert.Nil(t, cp)

	require.NoError(t, repos.Checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{Name: "refresh", Page: 3, Total: 120}))

	cp, err = repos.Checkpoints.LoadCheckpoint(ctx, "refresh")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 3, cp.Page)
	assert.Equal(t, 120, cp.Total)
	assert.False(t, cp.UpdatedAt.IsZero())

	require.NoError(t, repos.Checkpoints.DeleteCheckpoint(ctx, "refresh"))
	cp, err = repos.Checkpoints.LoadCheckpoint(ctx, "refresh")
	require.NoError(t, err)
	assert.Nil(t, cp)
}
