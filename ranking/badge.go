package ranking

import (
	"github.com/poiesic/concierge/core"
)

// AssignBadge maps a ranking position to its badge tier:
// 1 gold, 2 silver, 3 bronze, 4 through 10 classic, anything else none.
func AssignBadge(position int) core.BadgeTier {
	switch {
	case position == 1:
		return core.BadgeGold
	case position == 2:
		return core.BadgeSilver
	case position == 3:
		return core.BadgeBronze
	case position >= 4 && position <= 10:
		return core.BadgeClassic
	default:
		return core.BadgeNone
	}
}

// Badge is a residence's tier within one ranking category.
type Badge struct {
	Category core.RankingCategory `json:"category"`
	Position int                  `json:"position"`
	Score    float64              `json:"totalScore"`
	Tier     core.BadgeTier       `json:"tier"`
}

// Badges assigns a badge for every ranking of res, in the order the rankings are stored.
// Rankings outside the badge tiers are included with BadgeNone.
func Badges(res *core.Residence) []Badge {
	if res == nil {
		return nil
	}
	out := make([]Badge, 0, len(res.Rankings))
	for _, rs := range res.Rankings {
		out = append(out, Badge{
			Category: rs.Category,
			Position: rs.Position,
			Score:    rs.TotalScore,
			Tier:     AssignBadge(rs.Position),
		})
	}
	return out
}
