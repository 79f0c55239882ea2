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


package storage

import (
	"fmt"

	"github.com/poiesic/concierge/core"
)

type codec[T any] interface {
	Marshal(v T, bs []byte) (n int)
	Unmarshal(bs []byte) (v T, n int, err error)
	Size(v T) (size int)
}

func marshal[T any](c codec[T], v T) []byte {
	buf := make([]byte, c.Size(v))
	c.Marshal(v, buf)
	return buf
}

func unmarshal[T any](c codec[T], data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, ErrTruncatedData
	}
	v, _, err := c.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return v, nil
}

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *core.Session) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: nil session", ErrSerializationFailed)
	}
	return marshal[core.Session](core.SessionMUS, *session), nil
}

// UnmarshalSession deserializes a Session from bytes.
// Nil selection maps are replaced with empty ones.
func UnmarshalSession(data []byte) (*core.Session, error) {
	session, err := unmarshal[core.Session](core.SessionMUS, data)
	if err != nil {
		return nil, err
	}
	session.Selections = session.Selections.Clone()
	return &session, nil
}

// MarshalResidence serializes a Residence to bytes.
func MarshalResidence(residence *core.Residence) ([]byte, error) {
	if residence == nil {
		return nil, fmt.Errorf("%w: nil residence", ErrSerializationFailed)
	}
	return marshal[core.Residence](core.ResidenceMUS, *residence), nil
}

// UnmarshalResidence deserializes a Residence from bytes.
func UnmarshalResidence(data []byte) (*core.Residence, error) {
	residence, err := unmarshal[core.Residence](core.ResidenceMUS, data)
	if err != nil {
		return nil, err
	}
	return &residence, nil
}

// MarshalStrings serializes a string list to bytes.
func MarshalStrings(values []string) ([]byte, error) {
	return marshal[[]string](core.StringsMUS, values), nil
}

// UnmarshalStrings deserializes a string list from bytes.
// An empty list decodes as a non-nil empty slice.
func UnmarshalStrings(data []byte) ([]string, error) {
	values, err := unmarshal[[]string](core.StringsMUS, data)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) ([]byte, error) {
	if checkpoint == nil {
		return nil, fmt.Errorf("%w: nil checkpoint", ErrSerializationFailed)
	}
	return marshal[core.Checkpoint](core.CheckpointMUS, *checkpoint), nil
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, err := unmarshal[core.Checkpoint](core.CheckpointMUS, data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
