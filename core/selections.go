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
	"slices"
	"strings"
)

// Selections maps fields to the values a user has chosen.
//
// Values holds canonical vocabulary entries and is what candidate queries filter on.
// Custom holds values the user insisted on that have no canonical counterpart; they are
// kept for display and never used as filters.
//
// Single-valued fields hold at most one value. Multi-valued fields hold a sorted set.
type Selections struct {
	Values map[Field][]string `json:"values,omitempty"`
	Custom map[Field][]string `json:"custom,omitempty"`
}

// NewSelections returns an empty selection set.
func NewSelections() Selections {
	return Selections{
		Values: make(map[Field][]string),
		Custom: make(map[Field][]string),
	}
}

// Get returns a copy of the canonical values for a field.
func (s Selections) Get(f Field) []string {
	return slices.Clone(s.Values[f])
}

// First returns the first canonical value for a field, or "".
func (s Selections) First(f Field) string {
	if v := s.Values[f]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Has reports whether a field has canonical values.
func (s Selections) Has(f Field) bool {
	return len(s.Values[f]) > 0
}

// Empty reports whether no canonical values are set.
func (s Selections) Empty() bool {
	for _, v := range s.Values {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// Fields returns the fields with canonical values in AllFields order.
func (s Selections) Fields() []Field {
	var out []Field
	for _, f := range AllFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Set overwrites a field with the given values. Calling Set with no
// non-empty values leaves the field unchanged.
func (s *Selections) Set(f Field, values ...string) {
	values = normalizeValues(f, values)
	if len(values) == 0 {
		return
	}
	if s.Values == nil {
		s.Values = make(map[Field][]string)
	}
	s.Values[f] = values
}

// Add merges values into a multi-valued field. Single-valued fields are overwritten.
func (s *Selections) Add(f Field, values ...string) {
	if !f.MultiValued() {
		s.Set(f, values...)
		return
	}
	s.Set(f, append(slices.Clone(s.Values[f]), values...)...)
}

// AddCustom records an uncanonicalized value for a field.
func (s *Selections) AddCustom(f Field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if s.Custom == nil {
		s.Custom = make(map[Field][]string)
	}
	if f.MultiValued() {
		s.Custom[f] = normalizeValues(f, append(slices.Clone(s.Custom[f]), value))
		return
	}
	s.Custom[f] = []string{value}
}

// Without returns a copy with the given fields removed from both canonical and custom values.
func (s Selections) Without(fields ...Field) Selections {
	out := s.Clone()
	for _, f := range fields {
		delete(out.Values, f)
		delete(out.Custom, f)
	}
	return out
}

// Canonical returns a copy holding only the canonical values.
func (s Selections) Canonical() Selections {
	out := s.Clone()
	out.Custom = make(map[Field][]string)
	return out
}

// Clone returns a deep copy.
func (s Selections) Clone() Selections {
	out := NewSelections()
	for f, v := range s.Values {
		if len(v) > 0 {
			out.Values[f] = slices.Clone(v)
		}
	}
	for f, v := range s.Custom {
		if len(v) > 0 {
			out.Custom[f] = slices.Clone(v)
		}
	}
	return out
}

// Fingerprint returns a deterministic identifier of the canonical values.
func (s Selections) Fingerprint() ID {
	var b strings.Builder
	for _, f := range AllFields {
		if !s.Has(f) {
			continue
		}
		b.WriteString(string(f))
		b.WriteByte('=')
		for i, v := range s.Values[f] {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(strings.ToLower(v))
		}
		b.WriteByte(';')
	}
	return IDFromContent(b.String())
}

func normalizeValues(f Field, values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	if !f.MultiValued() {
		return out[len(out)-1:]
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
