package extraction

import (
	"strconv"
	"strings"

	"github.com/poiesic/concierge/core"
)

var (
	affirmative = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true,
		"okay": true, "correct": true, "right": true, "that one": true, "yes please": true,
	}
	negative = map[string]bool{
		"no": true, "n": true, "nope": true, "skip": true, "none": true, "neither": true,
		"never mind": true, "nevermind": true, "no thanks": true,
	}
	keepCustom = map[string]bool{
		"keep": true, "keep it": true, "keep mine": true, "custom": true, "as is": true,
		"add it": true, "add as custom": true, "use mine": true, "keep it as is": true,
	}
)

// resolvePending treats text as an answer to the oldest pending suggestion.
// It returns false when text does not look like an answer.
func (e *Extractor) resolvePending(session *core.Session, text string) (*Resolution, bool) {
	pending := session.Pending[0]
	reply := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!?"))
	res := &Resolution{Field: pending.Field, Raw: pending.Raw}

	switch {
	case negative[reply]:
		res.Declined = true
	case keepCustom[reply]:
		session.Selections.AddCustom(pending.Field, pending.Raw)
		res.Custom = true
		res.Value = pending.Raw
	default:
		value, ok := pick(pending, reply)
		if !ok {
			return nil, false
		}
		session.Selections.Add(pending.Field, value)
		res.Value = value
	}

	session.Pending = session.Pending[1:]
	if len(session.Pending) == 0 {
		session.Pending = nil
	}
	return res, true
}

func pick(pending core.PendingSuggestion, reply string) (string, bool) {
	if len(pending.Suggestions) == 0 {
		return "", false
	}
	if affirmative[reply] {
		return pending.Suggestions[0].Value, true
	}
	if n, err := strconv.Atoi(reply); err == nil {
		if n >= 1 && n <= len(pending.Suggestions) {
			return pending.Suggestions[n-1].Value, true
		}
		return "", false
	}
	for _, s := range pending.Suggestions {
		if strings.EqualFold(s.Value, reply) {
			return s.Value, true
		}
	}
	return "", false
}

func dropPending(session *core.Session, field core.Field) {
	kept := session.Pending[:0]
	for _, p := range session.Pending {
		if p.Field != field {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	session.Pending = kept
}
