package extraction

import (
	"strings"

	"github.com/poiesic/concierge/core"
)

// Rule proposes values for one field when a prior selection matches.
type Rule struct {
	When    core.Field // Field that must already be set
	Matches string     // Required value of When; empty matches any value
	Suggest core.Field // Field to propose values for; skipped once set
	Values  []string
	Reason  string
}

func (r Rule) applies(sel core.Selections) bool {
	if !sel.Has(r.When) || sel.Has(r.Suggest) {
		return false
	}
	if r.Matches == "" {
		return true
	}
	for _, v := range sel.Values[r.When] {
		if strings.EqualFold(v, r.Matches) {
			return true
		}
	}
	return false
}

// RuleTable is an ordered list of suggestion rules keyed by
// (target field, prior selection pattern).
type RuleTable struct {
	rules []Rule
}

// NewRuleTable creates a table from rules, evaluated in order.
func NewRuleTable(rules ...Rule) *RuleTable {
	return &RuleTable{rules: rules}
}

// Add appends a rule.
func (t *RuleTable) Add(r Rule) {
	t.rules = append(t.rules, r)
}

// Suggest returns at most one hint per unset field: the first matching rule wins.
func (t *RuleTable) Suggest(sel core.Selections) []core.Hint {
	var hints []core.Hint
	seen := make(map[core.Field]bool)
	for _, r := range t.rules {
		if seen[r.Suggest] || !r.applies(sel) {
			continue
		}
		seen[r.Suggest] = true
		hints = append(hints, core.Hint{
			Field:  r.Suggest,
			Values: append([]string(nil), r.Values...),
			Reason: r.Reason,
		})
	}
	return hints
}

// DefaultRules returns the built-in suggestion table.
func DefaultRules() *RuleTable {
	return NewRuleTable(
		Rule{When: core.FieldLocation, Matches: "Dubai", Suggest: core.FieldAmenities,
			Values: []string{"Private Beach", "Marina Access"}, Reason: "waterfront living is popular in Dubai"},
		Rule{When: core.FieldLocation, Matches: "UAE", Suggest: core.FieldAmenities,
			Values: []string{"Private Beach", "Marina Access"}, Reason: "waterfront living is popular in the UAE"},
		Rule{When: core.FieldLocation, Matches: "Switzerland", Suggest: core.FieldLifestyle,
			Values: []string{"Ski", "Wellness"}, Reason: "alpine residences suit ski and wellness lifestyles"},
		Rule{When: core.FieldLifestyle, Matches: "Golf", Suggest: core.FieldAmenities,
			Values: []string{"Golf Course"}, Reason: "golf lovers usually want a course on site"},
		Rule{When: core.FieldLifestyle, Matches: "Wellness", Suggest: core.FieldAmenities,
			Values: []string{"Spa", "Fitness Center"}, Reason: "wellness residences usually include a spa"},
		Rule{When: core.FieldBudget, Matches: core.Budget5MPlus, Suggest: core.FieldBrand,
			Values: []string{"Aman", "Four Seasons", "Bulgari"}, Reason: "top branded residences at this budget"},
		Rule{When: core.FieldBudget, Suggest: core.FieldLocation,
			Values: []string{"Dubai", "London", "Miami"}, Reason: "popular destinations"},
	)
}
