// Package redis stores conversation sessions in Redis so several concierge
// processes can share them.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

const (
	defaultPrefix = "concierge"
	sessionsSet   = "sessions"
)

// SessionRepository implements storage.SessionRepository on Redis.
// Each session is a mus-encoded string; a set tracks known ids for listing.
type SessionRepository struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	logger    *slog.Logger
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// Option configures a SessionRepository.
type Option func(*SessionRepository)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(r *SessionRepository) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithRetention makes Redis drop ended sessions d after their last write.
// Active sessions never expire here; the idle sweep ends them first.
// Zero keeps sessions forever.
func WithRetention(d time.Duration) Option {
	return func(r *SessionRepository) {
		if d > 0 {
			r.retention = d
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *SessionRepository) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewSessionRepository wraps an existing client. The repository does not own the client
// unless it was created by Open.
func NewSessionRepository(client redis.UniversalClient, opts ...Option) *SessionRepository {
	r := &SessionRepository{
		client: client,
		prefix: defaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open connects to the Redis server at addr and verifies it answers.
func Open(ctx context.Context, addr, password string, db int, opts ...Option) (*SessionRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewSessionRepository(client, opts...), nil
}

// Close closes the underlying client.
func (r *SessionRepository) Close() error {
	return r.client.Close()
}

func (r *SessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%s:sess:%s", r.prefix, id)
}

// ttl is the expiration written with a session. Zero clears any expiration.
func (r *SessionRepository) ttl(session *core.Session) time.Duration {
	if session.Status == core.SessionActive {
		return 0
	}
	return r.retention
}

func (r *SessionRepository) setKey() string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionsSet)
}

// CreateSession stores a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	value, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.sessionKey(session.Id), value, r.ttl(session)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrDuplicateKey
	}
	return r.client.SAdd(ctx, r.setKey(), session.Id).Err()
}

// GetSession retrieves a session by Id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalSession(data)
}

// UpdateSession replaces a stored session. Ended sessions start their retention countdown.
func (r *SessionRepository) UpdateSession(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	value, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, r.sessionKey(session.Id), value, r.ttl(session)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if err := r.client.SRem(ctx, r.setKey(), id).Err(); err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListSessions returns sessions with the given status, or all sessions when status is empty.
// Ids whose session has aged out are pruned from the index.
func (r *SessionRepository) ListSessions(ctx context.Context, status core.SessionStatus) ([]*core.Session, error) {
	ids, err := r.client.SMembers(ctx, r.setKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*core.Session
	var stale []any
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		session, err := storage.UnmarshalSession([]byte(s))
		if err != nil {
			r.logger.Warn("skipping unreadable session", "id", ids[i], "err", err)
			continue
		}
		if status == "" || session.Status == status {
			sessions = append(sessions, session)
		}
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.setKey(), stale...).Err(); err != nil {
			r.logger.Warn("failed to prune session index", "err", err)
		}
	}
	return sessions, nil
}
