package session

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/concierge/core"
)

// ExpireIdle expires every active session that has been idle longer than the
// idle timeout and returns how many were expired.
func (m *Manager) ExpireIdle(ctx context.Context) (int, error) {
	active, err := m.repo.ListSessions(ctx, core.SessionActive)
	if err != nil {
		return 0, err
	}

	var errs []error
	expired := 0
	for _, candidate := range active {
		if !m.idle(candidate) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		unlock := m.locks.lock(candidate.Id)
		// Reload under the lock; a message may have arrived since the listing
		s, err := m.load(ctx, candidate.Id)
		unlock()
		if err != nil {
			if errors.Is(err, core.ErrSessionNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if s.Status == core.SessionExpired {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// RunJanitor calls ExpireIdle every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTimeout / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.ExpireIdle(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error("expiring idle sessions", "err", err)
			}
			if n > 0 {
				m.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}
