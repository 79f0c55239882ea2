package storage

import (
	"fmt"

	"github.com/poiesic/concierge/core"
)

// CheckQuery validates the canonical part of a candidate query.
// Unknown fields and budgets outside core.BudgetBands return ErrInvalidQuery.
func CheckQuery(selections core.Selections) error {
	for f := range selections.Values {
		if !f.Valid() {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, f)
		}
	}
	if band := selections.First(core.FieldBudget); band != "" {
		if _, ok := core.ParseBudgetBand(band); !ok {
			return fmt.Errorf("%w: unknown budget %q", ErrInvalidQuery, band)
		}
	}
	return nil
}
