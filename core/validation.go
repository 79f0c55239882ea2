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


package core

import (
	"fmt"
	"strings"
)

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Status must be active, completed or expired
//   - Selections may only use known fields
//
// NOT validated:
//   - Pending suggestions (stale ones are discarded on the next turn)
func ValidateSession(s *Session) error {
	if s == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}

	if strings.TrimSpace(s.Id) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptyId)
	}

	if err := ValidateSessionStatus(s.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	for f := range s.Selections.Values {
		if !f.Valid() {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSession, ErrUnknownField, f)
		}
	}
	for f := range s.Selections.Custom {
		if !f.Valid() {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSession, ErrUnknownField, f)
		}
	}

	return nil
}

// ValidateSessionStatus validates that a SessionStatus is known.
func ValidateSessionStatus(status SessionStatus) error {
	switch status {
	case SessionActive, SessionCompleted, SessionExpired:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// ValidateResidence validates a Residence according to domain rules.
//
// Validation rules:
//   - Id and Name must not be empty
//   - Prices must be non-negative and PriceMax, when set, at least PriceMin
//   - Ranking positions must be positive
func ValidateResidence(r *Residence) error {
	if r == nil {
		return fmt.Errorf("%w: residence is nil", ErrInvalidResidence)
	}

	if strings.TrimSpace(r.Id) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResidence, ErrEmptyId)
	}

	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidResidence)
	}

	if r.PriceMin < 0 || r.PriceMax < 0 || (r.PriceMax != 0 && r.PriceMax < r.PriceMin) {
		return fmt.Errorf("%w: %w", ErrInvalidResidence, ErrInvalidPrice)
	}

	for _, rs := range r.Rankings {
		if rs.Position < 1 {
			return fmt.Errorf("%w: %w: %s", ErrInvalidResidence, ErrInvalidPosition, rs.Category.Slug)
		}
	}

	return nil
}
