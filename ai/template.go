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


package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/concierge/core"
)

// maxListed is how many residences a template reply names.
const maxListed = 3

// Template is a deterministic Responder that needs no external service.
// It is the fallback whenever a model-backed responder fails.
type Template struct{}

var _ Responder = Template{}

// Respond renders the turn as a short plain-text reply.
func (Template) Respond(_ context.Context, turn *Turn) (string, error) {
	return Describe(turn), nil
}

// Describe renders the facts of a turn as plain sentences.
func Describe(turn *Turn) string {
	var parts []string

	if len(turn.Pending) > 0 {
		parts = append(parts, describePending(turn.Pending[0]))
	}

	switch {
	case turn.Exhausted:
		parts = append(parts, "I couldn't find any residences for these preferences, even after relaxing all of them. Try a different location or budget.")
	case len(turn.Results) > 0:
		parts = append(parts, describeResults(turn))
	case turn.Selections.Empty() && len(turn.Pending) == 0:
		parts = append(parts, "Tell me what you're looking for: a location, budget, brand, amenities or lifestyle.")
	}

	for _, h := range turn.Hints {
		parts = append(parts, fmt.Sprintf("You might also consider %s for %s (%s).", joinOr(h.Values, "and"), h.Field, h.Reason))
	}

	if len(turn.Ignored) > 0 {
		parts = append(parts, fmt.Sprintf("I didn't understand %s.", quoteAll(turn.Ignored)))
	}

	return strings.Join(parts, " ")
}

func describePending(p core.PendingSuggestion) string {
	values := make([]string, len(p.Suggestions))
	for i, s := range p.Suggestions {
		values[i] = fmt.Sprintf("%d) %s", i+1, s.Value)
	}
	return fmt.Sprintf("I don't recognize %q for %s. Did you mean %s? Reply with a number, or \"keep it\" to use it as typed.",
		p.Raw, p.Field, joinOr(values, "or"))
}

func describeResults(turn *Turn) string {
	var b strings.Builder
	n := len(turn.Results)
	if turn.Relaxed() {
		fields := make([]string, len(turn.RelaxedFields))
		for i, f := range turn.RelaxedFields {
			fields[i] = string(f)
		}
		fmt.Fprintf(&b, "Nothing matched everything, so I relaxed %s. ", joinOr(fields, "and"))
		fmt.Fprintf(&b, "Here %s %d close %s: ", plural(n, "is", "are"), n, plural(n, "match", "matches"))
	} else {
		fmt.Fprintf(&b, "I found %d %s: ", n, plural(n, "residence", "residences"))
	}

	listed := min(n, maxListed)
	names := make([]string, listed)
	for i, r := range turn.Results[:listed] {
		names[i] = fmt.Sprintf("%s in %s (%d%% match)", r.Residence.Name, place(r.Residence), int(math.Round(r.MatchScore*100)))
	}
	b.WriteString(strings.Join(names, "; "))
	if n > listed {
		fmt.Fprintf(&b, "; and %d more", n-listed)
	}
	b.WriteString(".")
	return b.String()
}

func place(r *core.Residence) string {
	switch {
	case r.City != "" && r.Country != "" && !strings.EqualFold(r.City, r.Country):
		return r.City + ", " + r.Country
	case r.City != "":
		return r.City
	default:
		return r.Country
	}
}

func joinOr(values []string, conj string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	case 2:
		return values[0] + " " + conj + " " + values[1]
	}
	return strings.Join(values[:len(values)-1], ", ") + ", " + conj + " " + values[len(values)-1]
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return joinOr(quoted, "or")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
