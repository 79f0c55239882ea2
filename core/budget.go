package core

import "strings"

// Canonical budget bands.
const (
	BudgetUnder1M = "Under $1M"
	Budget1To2M   = "$1M-$2M"
	Budget2To5M   = "$2M-$5M"
	Budget5MPlus  = "$5M+"
)

// BudgetBands is the canonical budget vocabulary in ascending order.
var BudgetBands = []string{BudgetUnder1M, Budget1To2M, Budget2To5M, Budget5MPlus}

// PriceRange is a half-open price interval [Min, Max). A zero Max is unbounded.
type PriceRange struct {
	Min float64
	Max float64
}

var bandRanges = map[string]PriceRange{
	strings.ToLower(BudgetUnder1M): {Min: 0, Max: 1_000_000},
	strings.ToLower(Budget1To2M):   {Min: 1_000_000, Max: 2_000_000},
	strings.ToLower(Budget2To5M):   {Min: 2_000_000, Max: 5_000_000},
	strings.ToLower(Budget5MPlus):  {Min: 5_000_000},
}

// ParseBudgetBand returns the price range of a canonical budget band.
func ParseBudgetBand(band string) (PriceRange, bool) {
	r, ok := bandRanges[strings.ToLower(strings.TrimSpace(band))]
	return r, ok
}

// BandForAmount returns the band containing amount.
func BandForAmount(amount float64) string {
	for _, band := range BudgetBands {
		r := bandRanges[strings.ToLower(band)]
		if amount >= r.Min && (r.Max == 0 || amount < r.Max) {
			return band
		}
	}
	return BudgetUnder1M
}

// Overlaps reports whether the residence price span [lo, hi] intersects the range.
func (r PriceRange) Overlaps(lo, hi float64) bool {
	if hi < lo {
		hi = lo
	}
	return hi >= r.Min && (r.Max == 0 || lo < r.Max)
}
