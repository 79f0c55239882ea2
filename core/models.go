package core

import (
	"encoding/binary"
	"iter"
	"maps"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic content identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Field names a slot that can be extracted from conversation.
type Field string

const (
	FieldBudget    Field = "budget"
	FieldLocation  Field = "location"
	FieldAmenities Field = "amenities"
	FieldBrand     Field = "brand"
	FieldLifestyle Field = "lifestyle"
)

// AllFields lists every known field in display order.
var AllFields = []Field{FieldBudget, FieldLocation, FieldAmenities, FieldBrand, FieldLifestyle}

// MultiValued reports whether the field holds a set of values.
func (f Field) MultiValued() bool {
	return f == FieldAmenities || f == FieldLifestyle
}

// Valid reports whether f is one of AllFields.
func (f Field) Valid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField resolves a field name case-insensitively.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if !f.Valid() {
		return "", ErrUnknownField
	}
	return f, nil
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

// PendingSuggestion is a value the user typed that needs confirmation
// before it can be stored in the selections.
type PendingSuggestion struct {
	Field       Field        `json:"field"`
	Raw         string       `json:"raw"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Session is a single conversational search.
type Session struct {
	Id           string              `json:"id"`
	Status       SessionStatus       `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	LastActiveAt time.Time           `json:"lastActiveAt"`
	EndedAt      time.Time           `json:"endedAt,omitzero"`
	Metadata     map[string]string   `json:"metadata,omitempty"` // Captured once at creation
	Selections   Selections          `json:"selections"`
	Pending      []PendingSuggestion `json:"pending,omitempty"`
	Turns        int                 `json:"turns"`
}

// Active reports whether the session still accepts messages.
func (s *Session) Active() bool {
	return s.Status == SessionActive
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Metadata = maps.Clone(s.Metadata)
	out.Selections = s.Selections.Clone()
	if s.Pending != nil {
		out.Pending = make([]PendingSuggestion, len(s.Pending))
		for i, p := range s.Pending {
			p.Suggestions = append([]Suggestion(nil), p.Suggestions...)
			out.Pending[i] = p
		}
	}
	return &out
}

// RankingCategory is a ranking published by the upstream ranking service.
type RankingCategory struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// RankingScore is a residence's standing within one ranking category.
type RankingScore struct {
	Position   int             `json:"position"`
	TotalScore float64         `json:"totalScore"`
	Category   RankingCategory `json:"category"`
}

// Residence is a candidate property with the attributes used for matching.
type Residence struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	City       string         `json:"city"`
	Country    string         `json:"country"`
	PriceMin   float64        `json:"priceMin"`
	PriceMax   float64        `json:"priceMax"` // Zero means a single price of PriceMin
	Currency   string         `json:"currency,omitempty"`
	Amenities  []string       `json:"amenities,omitempty"`
	Brand      string         `json:"brand,omitempty"`
	Lifestyles []string       `json:"lifestyles,omitempty"`
	Rankings   []RankingScore `json:"rankings,omitempty"`
	UpdatedAt  time.Time      `json:"updatedAt,omitzero"`
}

// ScoredResidence pairs a residence with its match score against a selection set.
type ScoredResidence struct {
	Residence     *Residence `json:"residence"`
	MatchScore    float64    `json:"matchScore"`
	MatchedFields []Field    `json:"matchedFields"`
}

// BadgeTier is the display tier derived from a ranking position.
type BadgeTier int

const (
	BadgeNone BadgeTier = iota
	BadgeGold
	BadgeSilver
	BadgeBronze
	BadgeClassic
)

var badgeNames = map[BadgeTier]string{
	BadgeNone:    "none",
	BadgeGold:    "gold",
	BadgeSilver:  "silver",
	BadgeBronze:  "bronze",
	BadgeClassic: "classic",
}

func (b BadgeTier) String() string {
	if name, ok := badgeNames[b]; ok {
		return name
	}
	return "none"
}

// MarshalText renders the tier by name.
func (b BadgeTier) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Suggestion is a canonical vocabulary entry offered for a raw value.
type Suggestion struct {
	Value      string  `json:"value"`
	Similarity float64 `json:"similarity"`
}

// ValidationResult is the outcome of checking a raw value against a field's vocabulary.
type ValidationResult struct {
	Field       Field        `json:"field"`
	Raw         string       `json:"raw"`
	IsValid     bool         `json:"isValid"`
	Canonical   string       `json:"canonical,omitempty"` // Set when IsValid
	Suggestions []Suggestion `json:"suggestions"`         // Highest similarity first
	Confidence  float64      `json:"confidence"`
	Message     string       `json:"message"`
	Custom      bool         `json:"custom"` // No vocabulary registered; keep the raw value as custom
}

// All iterates the suggestions in order. The sequence can be ranged over repeatedly.
func (r ValidationResult) All() iter.Seq[Suggestion] {
	return func(yield func(Suggestion) bool) {
		for _, s := range r.Suggestions {
			if !yield(s) {
				return
			}
		}
	}
}

// Top returns the best suggestion, if any.
func (r ValidationResult) Top() (Suggestion, bool) {
	if len(r.Suggestions) == 0 {
		return Suggestion{}, false
	}
	return r.Suggestions[0], true
}

// Ambiguous reports whether the caller must choose a suggestion or keep a custom value.
func (r ValidationResult) Ambiguous() bool {
	return !r.IsValid && !r.Custom && len(r.Suggestions) > 0
}

// Hint proposes values for a field the user has not set yet, based on what they already chose.
type Hint struct {
	Field  Field    `json:"field"`
	Values []string `json:"values"`
	Reason string   `json:"reason"`
}

// Checkpoint records how far a long-running job has progressed so it can resume.
type Checkpoint struct {
	Name      string    `json:"name"`
	Page      int       `json:"page"` // Last page fully processed
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}
