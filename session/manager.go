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


package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/events"
	"github.com/poiesic/concierge/extraction"
	"github.com/poiesic/concierge/ranking"
	"github.com/poiesic/concierge/relaxation"
	"github.com/poiesic/concierge/retry"
	"github.com/poiesic/concierge/storage"
)

// DefaultIdleTimeout is how long a session may go without a message before it expires.
const DefaultIdleTimeout = 30 * time.Minute

// Manager owns session lifecycles and processes messages.
// It is safe for concurrent use.
type Manager struct {
	repo        storage.SessionRepository
	extractor   *extraction.Extractor
	engine      *relaxation.Engine
	ranker      *ranking.Ranker
	responder   ai.Responder
	publisher   events.Publisher
	idleTimeout time.Duration
	now         func() time.Time
	locks       *keyedMutex
	logger      *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithIdleTimeout sets how long a session may stay idle before it expires.
// Default is DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) error {
		if d <= 0 {
			return ErrInvalidIdleTimeout
		}
		m.idleTimeout = d
		return nil
	}
}

// WithResponder sets the responder that phrases replies.
// Default is ai.Template. The template is also used whenever the responder fails.
func WithResponder(r ai.Responder) Option {
	return func(m *Manager) error {
		if r == nil {
			r = ai.Template{}
		}
		m.responder = r
		return nil
	}
}

// WithPublisher sets where lifecycle events are sent.
// Default is events.Discard.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) error {
		if p == nil {
			p = events.Discard
		}
		m.publisher = p
		return nil
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error {
		if now == nil {
			now = time.Now
		}
		m.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a Manager.
func NewManager(
	repo storage.SessionRepository,
	extractor *extraction.Extractor,
	engine *relaxation.Engine,
	ranker *ranking.Ranker,
	opts ...Option,
) (*Manager, error) {
	switch {
	case repo == nil:
		return nil, ErrRepositoryRequired
	case extractor == nil:
		return nil, ErrExtractorRequired
	case engine == nil:
		return nil, ErrEngineRequired
	case ranker == nil:
		return nil, ErrRankerRequired
	}

	m := &Manager{
		repo:        repo,
		extractor:   extractor,
		engine:      engine,
		ranker:      ranker,
		responder:   ai.Template{},
		publisher:   events.Discard,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		locks:       newKeyedMutex(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "session")
	return m, nil
}

// IdleTimeout returns the configured idle timeout.
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}

// Create starts a new active session. metadata is copied and never changes afterwards.
func (m *Manager) Create(ctx context.Context, metadata map[string]string) (*core.Session, error) {
	now := m.now().UTC()
	s := &core.Session{
		Id:           uuid.NewString(),
		Status:       core.SessionActive,
		CreatedAt:    now,
		LastActiveAt: now,
		Metadata:     maps.Clone(metadata),
		Selections:   core.NewSelections(),
	}

	if err := m.repo.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.logger.Info("session created", "session", s.Id)
	m.publish(ctx, events.SessionCreated, s.Id, nil)
	return s.Clone(), nil
}

// Get returns a session in whatever state it is in. An active session that has been
// idle too long is expired first.
// Returns core.ErrSessionNotFound if no session exists.
func (m *Manager) Get(ctx context.Context, id string) (*core.Session, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Query applies message to the session, finds and ranks matching residences and
// phrases a reply.
//
// Ambiguous values and an empty search are reported in the result, not as errors.
// Returns core.ErrSessionNotFound, core.ErrSessionCompleted or core.ErrSessionExpired
// for sessions that cannot take messages, and upstream errors from the candidate
// query. On any error the stored session is unchanged.
func (m *Manager) Query(ctx context.Context, id, message string) (*QueryResult, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	stored, err := m.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	work := stored.Clone()
	update, err := m.extractor.ApplyMessage(work, message)
	if err != nil {
		return nil, err
	}

	turn := &ai.Turn{
		Message:    message,
		Selections: work.Selections,
		Applied:    appliedFields(update),
		Pending:    work.Pending,
		Hints:      update.Hints,
		Ignored:    update.Ignored,
	}

	if !work.Selections.Empty() {
		resolved, err := m.engine.Resolve(ctx, work.Selections)
		if err != nil {
			m.logger.Warn("candidate query failed", "session", id, "err", err)
			return nil, err
		}
		turn.Results = m.ranker.Rank(resolved.Candidates, work.Selections)
		turn.RelaxedFields = resolved.RelaxedFields
		turn.Exhausted = resolved.Exhausted
	}

	reply := m.respond(ctx, turn)

	work.Turns++
	work.LastActiveAt = m.now().UTC()
	if err := m.repo.UpdateSession(ctx, work); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	switch {
	case turn.Exhausted:
		m.publish(ctx, events.SearchExhausted, id, turn.RelaxedFields)
	case turn.Relaxed():
		m.publish(ctx, events.ConstraintsRelaxed, id, turn.RelaxedFields)
	}
	if len(update.Ambiguous) > 0 {
		fields := make([]core.Field, len(update.Ambiguous))
		for i, a := range update.Ambiguous {
			fields[i] = a.Field
		}
		m.publish(ctx, events.SuggestionPending, id, fields)
	}

	m.logger.Debug("query processed",
		"session", id,
		"turn", work.Turns,
		"results", len(turn.Results),
		"relaxed", turn.RelaxedFields)

	return &QueryResult{
		SessionId:        id,
		FriendlyResponse: reply,
		Residences:       nonNil(turn.Results),
		Relaxed:          turn.Relaxed(),
		RelaxedFields:    nonNil(turn.RelaxedFields),
		Exhausted:        turn.Exhausted,
		Pending:          work.Pending,
		Hints:            turn.Hints,
		Ignored:          turn.Ignored,
		Selections:       work.Selections,
	}, nil
}

// QueryWithRetry is Query retried with exponential backoff while the candidate
// query times out or the upstream is unavailable. Session errors are returned at once.
func (m *Manager) QueryWithRetry(ctx context.Context, id, message string, maxAttempts int, baseDelay time.Duration) (*QueryResult, error) {
	var result *QueryResult
	err := retry.WithBackoffIf(ctx, func() error {
		var err error
		result, err = m.Query(ctx, id, message)
		return err
	}, maxAttempts, baseDelay, retry.Transient)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// End completes an active session.
func (m *Manager) End(ctx context.Context, id string) (*core.Session, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	s, err := m.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Status = core.SessionCompleted
	s.EndedAt = m.now().UTC()
	if err := m.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	m.logger.Info("session completed", "session", id, "turns", s.Turns)
	m.publish(ctx, events.SessionCompleted, id, nil)
	return s, nil
}

// AcceptSuggestion stores a canonical value the user picked for field.
func (m *Manager) AcceptSuggestion(ctx context.Context, id string, field core.Field, value string) (*core.Session, error) {
	return m.mutate(ctx, id, func(s *core.Session) error {
		_, err := m.extractor.Accept(s, field, value)
		return err
	})
}

// AddCustom stores a value for field without requiring a canonical match.
// Custom values are shown back to the user but never filter candidates.
func (m *Manager) AddCustom(ctx context.Context, id string, field core.Field, value string) (*core.Session, error) {
	return m.mutate(ctx, id, func(s *core.Session) error {
		return m.extractor.AddCustom(s, field, value)
	})
}

func (m *Manager) mutate(ctx context.Context, id string, fn func(*core.Session) error) (*core.Session, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	stored, err := m.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	work := stored.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.LastActiveAt = m.now().UTC()
	if err := m.repo.UpdateSession(ctx, work); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return work, nil
}

// load reads a session and expires it if it has been idle too long.
// Callers must hold the session lock.
func (m *Manager) load(ctx context.Context, id string) (*core.Session, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		}
		return nil, err
	}

	if s.Active() && m.idle(s) {
		if err := m.expire(ctx, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadActive is load for operations that need an active session.
func (m *Manager) loadActive(ctx context.Context, id string) (*core.Session, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch s.Status {
	case core.SessionCompleted:
		return nil, fmt.Errorf("%w: %s", core.ErrSessionCompleted, id)
	case core.SessionExpired:
		return nil, fmt.Errorf("%w: %s", core.ErrSessionExpired, id)
	}
	return s, nil
}

func (m *Manager) idle(s *core.Session) bool {
	return m.now().Sub(s.LastActiveAt) > m.idleTimeout
}

func (m *Manager) expire(ctx context.Context, s *core.Session) error {
	s.Status = core.SessionExpired
	s.EndedAt = m.now().UTC()
	if err := m.repo.UpdateSession(ctx, s); err != nil {
		return fmt.Errorf("expiring session: %w", err)
	}
	m.logger.Info("session expired", "session", s.Id, "idle", m.now().Sub(s.LastActiveAt))
	m.publish(ctx, events.SessionExpired, s.Id, nil)
	return nil
}

// respond asks the responder for a reply and falls back to the template.
func (m *Manager) respond(ctx context.Context, turn *ai.Turn) string {
	reply, err := m.responder.Respond(ctx, turn)
	if err != nil || reply == "" {
		if err != nil {
			m.logger.Warn("responder failed, using template", "err", err)
		}
		return ai.Describe(turn)
	}
	return reply
}

func (m *Manager) publish(ctx context.Context, t events.Type, id string, fields []core.Field) {
	event := events.Event{Type: t, SessionId: id, Fields: fields, At: m.now().UTC()}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("failed to publish event", "type", t, "session", id, "err", err)
	}
}

func appliedFields(u *extraction.Update) []core.Field {
	var out []core.Field
	for _, f := range core.AllFields {
		if _, ok := u.Applied[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clip(s)
}
