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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrInvalidResidence indicates a Residence failed validation.
	ErrInvalidResidence = errors.New("invalid residence")

	// ErrUnknownField indicates a field name outside AllFields.
	ErrUnknownField = errors.New("unknown field")

	// ErrEmptyId indicates an identifier is empty.
	ErrEmptyId = errors.New("id cannot be empty")

	// ErrInvalidStatus indicates an unknown SessionStatus value.
	ErrInvalidStatus = errors.New("invalid session status")

	// ErrInvalidPrice indicates a negative or inverted price range.
	ErrInvalidPrice = errors.New("invalid price range")

	// ErrInvalidPosition indicates a ranking position below 1.
	ErrInvalidPosition = errors.New("ranking position must be positive")
)

// ErrCorruptRecord indicates encoded record bytes declare more data than they hold.
var ErrCorruptRecord = errors.New("corrupt record")

// Conversation errors
var (
	// ErrSessionNotFound indicates no session exists with the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session timed out from inactivity.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionCompleted indicates the session was ended explicitly.
	// It wraps ErrSessionNotFound so callers treat it the same way.
	ErrSessionCompleted = fmt.Errorf("%w: session completed", ErrSessionNotFound)

	// ErrValidationAmbiguous indicates a value needs the user to pick a suggestion or keep it as custom.
	ErrValidationAmbiguous = errors.New("value is ambiguous")

	// ErrNoMatchesAfterFullRelaxation indicates every constraint was dropped and still nothing matched.
	ErrNoMatchesAfterFullRelaxation = errors.New("no matches after full relaxation")

	// ErrUpstreamTimeout indicates an upstream call did not finish in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamUnavailable indicates an upstream service refused or failed the call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ErrorKind classifies errors for callers that need to branch on them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindSessionNotFound
	KindSessionExpired
	KindValidationAmbiguous
	KindNoMatches
	KindUpstreamTimeout
	KindUpstreamUnavailable
	KindInvalid
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSessionNotFound:
		return "session_not_found"
	case KindSessionExpired:
		return "session_expired"
	case KindValidationAmbiguous:
		return "validation_ambiguous"
	case KindNoMatches:
		return "no_matches"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Retryable reports whether the same request may succeed if sent again.
func (k ErrorKind) Retryable() bool {
	return k == KindUpstreamTimeout || k == KindUpstreamUnavailable
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSessionExpired):
		return KindSessionExpired
	case errors.Is(err, ErrSessionNotFound):
		return KindSessionNotFound
	case errors.Is(err, ErrValidationAmbiguous):
		return KindValidationAmbiguous
	case errors.Is(err, ErrNoMatchesAfterFullRelaxation):
		return KindNoMatches
	case errors.Is(err, ErrUpstreamTimeout):
		return KindUpstreamTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrInvalidSession), errors.Is(err, ErrInvalidResidence),
		errors.Is(err, ErrUnknownField), errors.Is(err, ErrEmptyId):
		return KindInvalid
	default:
		return KindInternal
	}
}
