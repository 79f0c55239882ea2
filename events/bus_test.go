package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishConsume(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 2)
	require.NoError(t, bus.Consume(ctx, func(e Event) error {
		received <- e
		return nil
	}))

	sent := Event{Type: ConstraintsRelaxed, SessionId: "s1", Fields: []core.Field{core.FieldBrand}, At: time.Unix(100, 0).UTC()}
	require.NoError(t, bus.Publish(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_NackRedelivers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	require.NoError(t, bus.Consume(ctx, func(Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("try again")
		}
		close(done)
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, Event{Type: SessionCreated, SessionId: "s1"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not redelivered")
	}
	mu.Lock()
	assert.Equal(t, 2, attempts)
	mu.Unlock()
}

func TestBus_FailingHandlerGivesUp(t *testing.T) {
	bus := NewBus(WithMaxAttempts(2))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := make(map[string]int)
	next := make(chan struct{})
	require.NoError(t, bus.Consume(ctx, func(e Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls[e.SessionId]++
		if e.SessionId == "bad" {
			return errors.New("always fails")
		}
		close(next)
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, Event{Type: SessionCreated, SessionId: "bad"}))
	require.NoError(t, bus.Publish(ctx, Event{Type: SessionCreated, SessionId: "good"}))

	select {
	case <-next:
	case <-time.After(2 * time.Second):
		t.Fatal("later event not delivered")
	}

	badCalls := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls["bad"]
	}
	assert.Eventually(t, func() bool { return badCalls() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, badCalls())

	mu.Lock()
	assert.Equal(t, 1, calls["good"])
	mu.Unlock()
}

func TestBus_Closed(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), Event{Type: SessionExpired})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Publish(context.Background(), Event{Type: SessionCompleted}))
}
