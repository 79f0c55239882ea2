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

import "strings"

// Satisfaction returns how well a residence meets the requested values for one field,
// from 0 (not at all) to 1 (fully).
//
// Single-valued fields score 1 or 0. Multi-valued fields score the fraction of
// requested values the residence offers. An empty request scores 1.
func Satisfaction(r *Residence, f Field, values []string) float64 {
	if len(values) == 0 {
		return 1
	}
	switch f {
	case FieldBudget:
		band, ok := ParseBudgetBand(values[0])
		if ok && band.Overlaps(r.PriceMin, r.PriceMax) {
			return 1
		}
	case FieldLocation:
		if strings.EqualFold(values[0], r.City) || strings.EqualFold(values[0], r.Country) {
			return 1
		}
	case FieldBrand:
		if strings.EqualFold(values[0], r.Brand) {
			return 1
		}
	case FieldAmenities:
		return fraction(values, r.Amenities)
	case FieldLifestyle:
		return fraction(values, r.Lifestyles)
	}
	return 0
}

// Satisfies reports whether a residence fully meets every canonical selection.
// Custom values are ignored.
func Satisfies(r *Residence, s Selections) bool {
	for f, values := range s.Values {
		if Satisfaction(r, f, values) < 1 {
			return false
		}
	}
	return true
}

func fraction(want, have []string) float64 {
	matched := 0
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(want))
}
