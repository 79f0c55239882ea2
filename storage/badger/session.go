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


package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	return &SessionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SessionRepository has no resources to release.
func (r *SessionRepository) Close() error {
	return nil
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
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeSessionKey(session.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Set(key, value)
	})
}

// GetSession retrieves a session by Id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.Session, error) {
	var session *core.Session
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		session, err = readSession(tx, makeSessionKey(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSession replaces a stored session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	value, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeSessionKey(session.Id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return tx.Set(key, value)
	})
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeSessionKey(id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return tx.Delete(key)
	})
}

// ListSessions returns sessions with the given status, or all sessions when status is empty.
func (r *SessionRepository) ListSessions(ctx context.Context, status core.SessionStatus) ([]*core.Session, error) {
	var sessions []*core.Session
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(sessionPrefix+":"), func(_, val []byte) error {
			session, err := storage.UnmarshalSession(val)
			if err != nil {
				return err
			}
			if status == "" || session.Status == status {
				sessions = append(sessions, session)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func readSession(tx *badger.Txn, key []byte) (*core.Session, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var session *core.Session
	err = item.Value(func(val []byte) error {
		var err error
		session, err = storage.UnmarshalSession(val)
		return err
	})
	return session, err
}
