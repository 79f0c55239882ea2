package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockResponder_Default(t *testing.T) {
	m := NewMockResponder()
	turn := &ai.Turn{Selections: core.NewSelections()}

	reply, err := m.Respond(context.Background(), turn)
	require.NoError(t, err)
	assert.Equal(t, ai.Describe(turn), reply)
	assert.Equal(t, 1, m.CallCount())
	assert.Same(t, turn, m.LastTurn())
}

func TestMockResponder_Custom(t *testing.T) {
	boom := errors.New("offline")
	m := NewMockResponder().WithRespondFunc(func(context.Context, *ai.Turn) (string, error) {
		return "", boom
	})

	_, err := m.Respond(context.Background(), &ai.Turn{})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.LastTurn())
	assert.Nil(t, m.RespondFunc)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	defer p.Close()

	mp := p.(*MockProvider)
	assert.Same(t, mp.GetMockResponder(), p.Responder())
}
