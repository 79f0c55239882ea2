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


package openai

import (
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
)

const systemPrompt = `You are a concierge helping a client find a luxury residence.

Rewrite the FACTS you are given as a short, warm reply of at most four sentences.

Rules:
- Mention only residences, values and numbers that appear in the FACTS. Do not invent anything.
- If a question for the client appears in the FACTS, keep it and keep its numbered options exactly.
- If constraints were relaxed, say which ones plainly.
- Do not use markdown, lists or emoji.
- Reply with the text only, no preamble.`

// buildTurnPrompt lists the facts of a turn for the model.
func buildTurnPrompt(turn *ai.Turn) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CLIENT MESSAGE: %s\n\n", strings.TrimSpace(turn.Message))

	b.WriteString("PREFERENCES:\n")
	if turn.Selections.Empty() {
		b.WriteString("- none yet\n")
	}
	for _, f := range core.AllFields {
		values := turn.Selections.Get(f)
		values = append(values, turn.Selections.Custom[f]...)
		if len(values) > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", f, strings.Join(values, ", "))
		}
	}

	if len(turn.Results) > 0 {
		b.WriteString("\nRESIDENCES (best first):\n")
		for i, r := range turn.Results {
			if i == 5 {
				fmt.Fprintf(&b, "- and %d more\n", len(turn.Results)-i)
				break
			}
			fmt.Fprintf(&b, "- %s, %s %s, %d%% match\n", r.Residence.Name, r.Residence.City, r.Residence.Country,
				int(math.Round(r.MatchScore*100)))
		}
	}

	fmt.Fprintf(&b, "\nFACTS: %s\n", ai.Describe(turn))
	return b.String()
}
