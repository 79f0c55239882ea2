// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/concierge/ai"
)

// MockResponder is a test double for ai.Responder.
// It allows custom behavior injection via function fields.
type MockResponder struct {
	// RespondFunc is called by Respond if set.
	// If nil, renders the turn with ai.Describe.
	RespondFunc func(ctx context.Context, turn *ai.Turn) (string, error)

	mu        sync.Mutex
	callCount int
	lastTurn  *ai.Turn
}

var _ ai.Responder = (*MockResponder)(nil)

// NewMockResponder creates a mock responder with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

// WithRespondFunc sets custom behavior and returns the mock for chaining.
func (m *MockResponder) WithRespondFunc(fn func(ctx context.Context, turn *ai.Turn) (string, error)) *MockResponder {
	m.RespondFunc = fn
	return m
}

// Respond records the call and returns the injected or default reply.
func (m *MockResponder) Respond(ctx context.Context, turn *ai.Turn) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastTurn = turn
	fn := m.RespondFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, turn)
	}
	return ai.Describe(turn), nil
}

// CallCount returns the number of times Respond was called.
func (m *MockResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastTurn returns the turn passed to the most recent Respond call.
func (m *MockResponder) LastTurn() *ai.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTurn
}

// Reset clears the call count and custom functions.
func (m *MockResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastTurn = nil
	m.RespondFunc = nil
}
