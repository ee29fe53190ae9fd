package scoring

import (
	"math"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

// Composite score weights. Traffic volume carries 60% combined weight
// as the most reliable signal; search metrics contribute the rest plus
// a bonus rewarding pages already inside the top 10. The weights are a
// compatibility contract with stored snapshots and must not drift.
const (
	weightPageviews   = 0.4
	weightSessions    = 0.2
	weightClicks      = 0.3
	weightImpressions = 0.01

	topPositionCutoff = 10
	topPositionBonus  = 10
)

// CompositeScore blends traffic and search metrics into a single
// ranking number, rounded to two decimals. Positions beyond 10 add no
// bonus and no penalty here; poor positions are the attention scorer's
// concern.
func CompositeScore(m domain.PageMetrics) float64 {
	score := float64(m.Pageviews)*weightPageviews +
		float64(m.Sessions)*weightSessions +
		float64(m.Clicks)*weightClicks +
		float64(m.Impressions)*weightImpressions

	if m.Position <= topPositionCutoff {
		score += (topPositionCutoff - m.Position) * topPositionBonus
	}

	return math.Round(score*100) / 100
}
