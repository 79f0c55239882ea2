package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/poiesic/concierge/core"
)

// cues maps words that introduce a value to the field the value belongs to.
// Two-word cues are matched before single words.
var cues = map[string]core.Field{
	"located in": core.FieldLocation,
	"close to":   core.FieldLocation,
	"based in":   core.FieldLocation,
	"in":         core.FieldLocation,
	"near":       core.FieldLocation,
	"around":     core.FieldLocation,
	"at":         core.FieldLocation,
	"location":   core.FieldLocation,
	"city":       core.FieldLocation,
	"country":    core.FieldLocation,

	"branded by": core.FieldBrand,
	"by":         core.FieldBrand,
	"from":       core.FieldBrand,
	"brand":      core.FieldBrand,
	"branded":    core.FieldBrand,

	"such as":   core.FieldAmenities,
	"with":      core.FieldAmenities,
	"featuring": core.FieldAmenities,
	"including": core.FieldAmenities,
	"includes":  core.FieldAmenities,
	"has":       core.FieldAmenities,
	"have":      core.FieldAmenities,
	"having":    core.FieldAmenities,
	"need":      core.FieldAmenities,
	"needs":     core.FieldAmenities,
	"amenity":   core.FieldAmenities,
	"amenities": core.FieldAmenities,

	"for":        core.FieldLifestyle,
	"lifestyle":  core.FieldLifestyle,
	"lifestyles": core.FieldLifestyle,
	"vibe":       core.FieldLifestyle,
	"style":      core.FieldLifestyle,

	"budget": core.FieldBudget,
	"price":  core.FieldBudget,
	"spend":  core.FieldBudget,
	"afford": core.FieldBudget,
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "some": true, "my": true, "our": true, "is": true,
	"are": true, "be": true, "of": true, "to": true, "i": true, "we": true, "want": true,
	"would": true, "like": true, "please": true, "also": true, "add": true, "too": true,
	"as": true, "well": true, "something": true, "place": true, "property": true,
	"home": true, "residence": true, "one": true, "that": true, "it": true, "me": true,
	"looking": true, "really": true, "nice": true, "luxury": true, "us": true, "good": true,
	"great": true, "maybe": true, "prefer": true, "preferably": true, "definitely": true,
	"ideally": true, "its": true, "it's": true, "i'm": true, "am": true, "very": true,
	"villa": true, "villas": true, "apartment": true, "penthouse": true, "house": true,
	"mansion": true, "condo": true, "estate": true, "flat": true, "residences": true,
}

// negations open a segment the user is ruling out. "do not" and friends
// are matched as two words.
var negations = map[string]bool{
	"no": true, "not": true, "without": true, "never": true, "don't": true, "dont": true,
	"doesn't": true, "won't": true, "do not": true, "does not": true, "rather not": true,
}

var additiveCues = []string{"also", "add", "plus", "additionally", "another", "too", "as well"}

var clauseSplitter = regexp.MustCompile(`[,;.!?\n]+|\s+(?:and|&|plus|but|also|or)\s+`)

var moneyPattern = regexp.MustCompile(
	`(?:\b(under|below|less than|up to|max|maximum|over|above|more than|at least|around|about)\s+)?` +
		`(\$\s?)?(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(k|m|mm|mn|million|b|bn|billion)?\b\+?`)

var rangePattern = regexp.MustCompile(
	`\$\s?(\d+(?:\.\d+)?)\s*(k|m|mm|mn|million)?\s*(?:-|to)\s*\$?\s?(\d+(?:\.\d+)?)\s*(k|m|mm|mn|million)\b`)

var multipliers = map[string]float64{
	"k": 1e3, "m": 1e6, "mm": 1e6, "mn": 1e6, "million": 1e6,
	"b": 1e9, "bn": 1e9, "billion": 1e9,
}

type segment struct {
	field   core.Field
	value   string
	negated bool
}

// moneyMatch is a budget band found in text, with the byte span it came from.
type moneyMatch struct {
	band       string
	start, end int
}

// findMoney locates amounts of money in lowercase text and maps each to a budget band.
// Bare numbers without a currency sign or magnitude are ignored.
func findMoney(text string) []moneyMatch {
	var out []moneyMatch

	// Ranges map to the band holding their midpoint.
	for _, m := range rangePattern.FindAllStringSubmatchIndex(text, -1) {
		lo, _ := strconv.ParseFloat(text[m[2]:m[3]], 64)
		hi, _ := strconv.ParseFloat(text[m[6]:m[7]], 64)
		hiUnit := multipliers[text[m[8]:m[9]]]
		loUnit := hiUnit
		if m[4] >= 0 {
			loUnit = multipliers[text[m[4]:m[5]]]
		}
		out = append(out, moneyMatch{
			band:  core.BandForAmount((lo*loUnit + hi*hiUnit) / 2),
			start: m[0],
			end:   m[1],
		})
		text = blank(text, m[0], m[1])
	}

	for _, m := range moneyPattern.FindAllStringSubmatchIndex(text, -1) {
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}
		qualifier, dollar, number, unit := group(1), group(2), group(3), group(4)
		if dollar == "" && unit == "" {
			continue
		}

		amount, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
		if err != nil {
			continue
		}
		switch {
		case unit != "":
			amount *= multipliers[unit]
		case amount < 1000:
			// "$5" in this market means five million
			amount *= 1e6
		}

		var band string
		switch qualifier {
		case "under", "below", "less than", "up to", "max", "maximum":
			band = core.BandForAmount(amount - 1)
		default:
			band = core.BandForAmount(amount)
		}

		out = append(out, moneyMatch{band: band, start: m[0], end: m[1]})
	}
	return out
}

// blank replaces text[start:end] with spaces so later passes skip it
// without shifting offsets.
func blank(text string, start, end int) string {
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}

func splitClauses(text string) []string {
	var out []string
	for _, c := range clauseSplitter.Split(text, -1) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// segmentClause cuts a clause at every cue. Text before the first cue has no field.
// A cue with nothing after it claims the text in front of it ("aman brand").
// A negation marks the segment after it, and a cue directly following the
// negation keeps the mark ("don't need a spa").
func segmentClause(clause string) []segment {
	tokens := strings.Fields(clause)
	var (
		segs    []segment
		current = segment{}
		words   []string
	)
	flush := func() {
		current.value = trimStopwords(words)
		segs = append(segs, current)
		words = nil
	}

	startCue := func(f core.Field) {
		negated := current.negated && len(words) == 0
		flush()
		current = segment{field: f, negated: negated}
	}
	startNegation := func() {
		flush()
		current = segment{negated: true}
	}

	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			pair := tokens[i] + " " + tokens[i+1]
			if negations[pair] {
				startNegation()
				i++
				continue
			}
			if f, ok := cues[pair]; ok {
				startCue(f)
				i++
				continue
			}
		}
		if negations[tokens[i]] {
			startNegation()
			continue
		}
		if f, ok := cues[tokens[i]]; ok {
			startCue(f)
			continue
		}
		words = append(words, tokens[i])
	}
	flush()

	var out []segment
	for _, s := range segs {
		if s.value == "" && s.field != "" && len(out) > 0 && out[len(out)-1].field == "" &&
			out[len(out)-1].negated == s.negated {
			out[len(out)-1].field = s.field
			continue
		}
		if s.value == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func trimStopwords(words []string) string {
	start, end := 0, len(words)
	for start < end && stopwords[words[start]] {
		start++
	}
	for end > start && stopwords[words[end-1]] {
		end--
	}
	return strings.Join(words[start:end], " ")
}

func hasAdditiveCue(text string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	padded := " " + strings.Join(words, " ") + " "
	for _, cue := range additiveCues {
		if strings.Contains(padded, " "+cue+" ") {
			return true
		}
	}
	return false
}
