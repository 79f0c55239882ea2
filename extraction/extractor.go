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


package extraction

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/concierge/core"
)

// Vocabulary validates values against canonical domains.
// *vocabulary.Validator satisfies it.
type Vocabulary interface {
	Validate(field core.Field, raw string) core.ValidationResult
	Lookup(field core.Field, raw string) (string, bool)
}

// Extractor turns user messages into selection updates.
type Extractor struct {
	vocabulary Vocabulary
	rules      *RuleTable
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithRules replaces the suggestion rules table.
func WithRules(rules *RuleTable) Option {
	return func(e *Extractor) error {
		if rules == nil {
			rules = &RuleTable{}
		}
		e.rules = rules
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an Extractor backed by vocabulary.
func NewExtractor(vocabulary Vocabulary, opts ...Option) (*Extractor, error) {
	if vocabulary == nil {
		return nil, ErrVocabularyRequired
	}

	e := &Extractor{
		vocabulary: vocabulary,
		rules:      DefaultRules(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Update describes what one message changed.
type Update struct {
	Applied   map[core.Field][]string  // Canonical values accepted this turn
	Custom    map[core.Field][]string  // Values kept without a canonical match
	Ambiguous []core.ValidationResult // Values waiting for the user to confirm
	Resolved  *Resolution             // Set when the message answered a pending question
	Ignored   []string                // Fragments that matched nothing
	Hints     []core.Hint
}

// Resolution records how a pending suggestion was answered.
type Resolution struct {
	Field    core.Field
	Raw      string
	Value    string
	Custom   bool
	Declined bool
}

// Changed reports whether any selection was written.
func (u *Update) Changed() bool {
	if len(u.Applied) > 0 || len(u.Custom) > 0 {
		return true
	}
	return u.Resolved != nil && !u.Resolved.Declined
}

func newUpdate() *Update {
	return &Update{
		Applied: make(map[core.Field][]string),
		Custom:  make(map[core.Field][]string),
	}
}

// ApplyMessage parses message and merges accepted values into session.Selections.
//
// Single-valued fields are overwritten by a new value. Multi-valued fields are
// overwritten when the message names them again, or extended when the message
// says "also", "add", "plus" and similar. Values that need confirmation are stored
// in session.Pending; the next message may answer them ("yes", "2", the value
// itself, "keep it", "no"). Fragments that match nothing are reported, never errors.
// Fragments after a negation ("no spa", "not in London") are skipped.
//
// ApplyMessage does not query candidates.
func (e *Extractor) ApplyMessage(session *core.Session, message string) (*Update, error) {
	if err := checkActive(session); err != nil {
		return nil, err
	}

	update := newUpdate()
	text := strings.TrimSpace(message)

	if text != "" && len(session.Pending) > 0 {
		if res, ok := e.resolvePending(session, text); ok {
			update.Resolved = res
			if res.Value != "" && !res.Custom && !res.Declined {
				update.Applied[res.Field] = []string{res.Value}
			}
			if res.Custom {
				update.Custom[res.Field] = []string{res.Value}
			}
			update.Hints = e.rules.Suggest(session.Selections)
			return update, nil
		}
	}

	if text != "" {
		session.Pending = nil
		e.parse(session, text, update)
	}

	update.Hints = e.rules.Suggest(session.Selections)
	e.logger.Debug("applied message",
		"session", session.Id,
		"applied", len(update.Applied),
		"ambiguous", len(update.Ambiguous),
		"ignored", len(update.Ignored))
	return update, nil
}

// Accept stores a value the user picked explicitly. The value must be a canonical
// member of the field's vocabulary.
func (e *Extractor) Accept(session *core.Session, field core.Field, value string) (string, error) {
	if err := checkActive(session); err != nil {
		return "", err
	}
	if !field.Valid() {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownField, field)
	}
	canonical, ok := e.vocabulary.Lookup(field, value)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a known %s", ErrNotCanonical, value, field)
	}
	session.Selections.Add(field, canonical)
	dropPending(session, field)
	return canonical, nil
}

// AddCustom stores a value the user wants kept without a canonical match.
func (e *Extractor) AddCustom(session *core.Session, field core.Field, value string) error {
	if err := checkActive(session); err != nil {
		return err
	}
	if !field.Valid() {
		return fmt.Errorf("%w: %s", core.ErrUnknownField, field)
	}
	if strings.TrimSpace(value) == "" {
		return ErrEmptyValue
	}
	session.Selections.AddCustom(field, value)
	dropPending(session, field)
	return nil
}

func (e *Extractor) parse(session *core.Session, text string, update *Update) {
	lower := strings.ToLower(text)
	additive := hasAdditiveCue(lower)
	touched := make(map[core.Field][]string)

	accept := func(f core.Field, value string) {
		touched[f] = append(touched[f], value)
		update.Applied[f] = append(update.Applied[f], value)
	}

	for _, m := range findMoney(lower) {
		lower = blank(lower, m.start, m.end)
		e.apply(session, core.FieldBudget, m.band, update, accept)
	}

	var inherit core.Field
	for _, clause := range splitClauses(lower) {
		for _, seg := range segmentClause(clause) {
			if seg.negated {
				e.logger.Debug("skipping negated fragment", "session", session.Id, "field", seg.field, "value", seg.value)
				continue
			}
			field := seg.field
			switch {
			case field != "":
				if !e.apply(session, field, seg.value, update, accept) && !e.scan(seg.value, field, accept) {
					update.Ignored = append(update.Ignored, seg.value)
				}
			case inherit != "":
				// A list item may belong to another field ("with a helipad, golf")
				if !e.scan(seg.value, inherit, accept) && !e.apply(session, inherit, seg.value, update, accept) {
					update.Ignored = append(update.Ignored, seg.value)
				}
				field = inherit
			default:
				if !e.scan(seg.value, "", accept) {
					update.Ignored = append(update.Ignored, seg.value)
				}
				continue
			}
			if field.MultiValued() {
				inherit = field
			} else {
				inherit = ""
			}
		}
	}

	for f, values := range touched {
		if f.MultiValued() && additive {
			session.Selections.Add(f, values...)
		} else {
			session.Selections.Set(f, values...)
		}
	}
}

// apply validates value for field and records the outcome. It returns false
// when the value matched nothing at all.
func (e *Extractor) apply(session *core.Session, field core.Field, value string, update *Update, accept func(core.Field, string)) bool {
	result := e.vocabulary.Validate(field, value)
	switch {
	case result.IsValid:
		accept(field, result.Canonical)
	case result.Custom:
		session.Selections.AddCustom(field, value)
		update.Custom[field] = append(update.Custom[field], value)
	case result.Ambiguous():
		session.Pending = append(session.Pending, core.PendingSuggestion{
			Field:       field,
			Raw:         value,
			Suggestions: result.Suggestions,
		})
		update.Ambiguous = append(update.Ambiguous, result)
	default:
		return false
	}
	return true
}

// scan looks for exact vocabulary phrases of up to four words in text,
// longest first. The prefer field is checked before the others.
// It returns true if anything matched.
func (e *Extractor) scan(text string, prefer core.Field, accept func(core.Field, string)) bool {
	fields := core.AllFields
	if prefer != "" {
		fields = append([]core.Field{prefer}, slices.DeleteFunc(slices.Clone(fields), func(f core.Field) bool {
			return f == prefer
		})...)
	}

	tokens := strings.Fields(text)
	used := make([]bool, len(tokens))
	found := false

	for n := min(4, len(tokens)); n > 0; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			if anyUsed(used[i : i+n]) {
				continue
			}
			phrase := strings.Join(tokens[i:i+n], " ")
			for _, f := range fields {
				if canonical, ok := e.vocabulary.Lookup(f, phrase); ok {
					accept(f, canonical)
					for j := i; j < i+n; j++ {
						used[j] = true
					}
					found = true
					break
				}
			}
		}
	}
	return found
}

func anyUsed(used []bool) bool {
	for _, u := range used {
		if u {
			return true
		}
	}
	return false
}

func checkActive(session *core.Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", core.ErrInvalidSession)
	}
	switch session.Status {
	case core.SessionActive:
		return nil
	case core.SessionExpired:
		return core.ErrSessionExpired
	case core.SessionCompleted:
		return core.ErrSessionCompleted
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, session.Status)
	}
}
