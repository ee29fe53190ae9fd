package scoring

import (
	"fmt"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

// factorInput bundles everything a single factor may inspect. History
// is nil when no prior snapshot exists for the page.
type factorInput struct {
	Metrics domain.PageMetrics
	Content domain.ContentMetadata
	History *domain.HistoricalSnapshot
}

// factorResult is one triggered finding: a score delta plus the
// human-readable explanation pair. Issue and Action may be empty for
// silent deltas.
type factorResult struct {
	Delta  float64
	Issue  string
	Action string
}

type factor struct {
	name string
	eval func(factorInput) []factorResult
}

// attentionFactors run in declaration order. The order fixes the order
// of the issue and action lists, which keeps reports reproducible.
var attentionFactors = []factor{
	{name: "seo-fundamentals", eval: seoFundamentals},
	{name: "ranking-opportunity", eval: rankingOpportunity},
	{name: "traffic-potential", eval: trafficPotential},
	{name: "historical-performance", eval: historicalPerformance},
	{name: "readability", eval: readability},
}

// PriorityScore computes the attention priority for one page: the sum
// of all factor deltas floored at zero, with the triggered issues and
// recommended actions concatenated in factor order. Larger means more
// urgent.
func PriorityScore(m domain.PageMetrics, c domain.ContentMetadata, hist *domain.HistoricalSnapshot) (float64, []string, []string) {
	in := factorInput{Metrics: m, Content: c, History: hist}

	var score float64
	var issues, actions []string
	for _, f := range attentionFactors {
		for _, res := range f.eval(in) {
			score += res.Delta
			if res.Issue != "" {
				issues = append(issues, res.Issue)
			}
			if res.Action != "" {
				actions = append(actions, res.Action)
			}
		}
	}

	if score < 0 {
		score = 0
	}
	return score, issues, actions
}

func seoFundamentals(in factorInput) []factorResult {
	var results []factorResult

	if in.Content.FocusKeyword == "" {
		results = append(results, factorResult{
			Delta:  -20,
			Issue:  "Missing focus keyword",
			Action: "Add focus keyword in Yoast SEO",
		})
	} else {
		results = append(results, factorResult{Delta: 10})
	}

	days := in.Content.DaysSinceUpdate
	switch {
	case days > 365:
		results = append(results, factorResult{
			Delta:  -15,
			Issue:  fmt.Sprintf("Not updated in %d days", days),
			Action: "Content refresh urgently needed - article over 1 year old",
		})
	case days >= 180:
		results = append(results, factorResult{
			Delta:  -10,
			Issue:  fmt.Sprintf("Not updated in %d days", days),
			Action: "Schedule content update - approaching 6 months",
		})
	default:
		results = append(results, factorResult{Delta: 5})
	}

	return results
}

// rankingOpportunity fires at most one bucket; positions below 4 or
// beyond 30 contribute nothing.
func rankingOpportunity(in factorInput) []factorResult {
	pos := in.Metrics.Position
	switch {
	case pos >= 4 && pos <= 10:
		return []factorResult{{
			Delta:  40,
			Issue:  fmt.Sprintf("Position %.1f - near page 1 top", pos),
			Action: "Quick push to top 3 positions - optimize title and add internal links",
		}}
	case pos >= 11 && pos <= 20:
		return []factorResult{{
			Delta:  25,
			Issue:  fmt.Sprintf("Position %.1f - page 2", pos),
			Action: "Target page 1 - improve content depth and backlinks",
		}}
	case pos >= 21 && pos <= 30:
		return []factorResult{{
			Delta:  10,
			Issue:  fmt.Sprintf("Position %.1f", pos),
			Action: "Long-term optimization - expand content and target related keywords",
		}}
	}
	return nil
}

func trafficPotential(in factorInput) []factorResult {
	impressions := in.Metrics.Impressions
	ctr := in.Metrics.CTR * 100

	switch {
	case impressions > 10000 && ctr < 2:
		return []factorResult{{
			Delta:  30,
			Issue:  fmt.Sprintf("%d impressions but %.1f%% CTR", impressions, ctr),
			Action: "Improve title and meta description - high visibility, low clicks",
		}}
	case impressions > 5000 && ctr < 2:
		return []factorResult{{
			Delta:  20,
			Issue:  fmt.Sprintf("%d impressions, %.1f%% CTR", impressions, ctr),
			Action: "Optimize title for better CTR - good impressions, needs improvement",
		}}
	case impressions > 5000:
		return []factorResult{{Delta: 10}}
	}
	return nil
}

func historicalPerformance(in factorInput) []factorResult {
	hist := in.History
	if hist == nil {
		return nil
	}

	var results []factorResult

	if hist.WasTop30() {
		results = append(results, factorResult{
			Delta:  20,
			Issue:  "Was in top 30, now dropped",
			Action: "Priority recovery - proven winner that declined",
		})
	}

	if hist.Pageviews > 0 {
		decline := float64(hist.Pageviews-in.Metrics.Pageviews) / float64(hist.Pageviews) * 100
		switch {
		case decline > 50:
			results = append(results, factorResult{
				Delta:  15,
				Issue:  fmt.Sprintf("Traffic declined %.0f%%", decline),
				Action: fmt.Sprintf("Investigate decline - lost %.0f%% traffic", decline),
			})
		case decline > 20:
			results = append(results, factorResult{
				Delta:  10,
				Issue:  fmt.Sprintf("Traffic declined %.0f%%", decline),
				Action: "Monitor closely - showing traffic decline",
			})
		case decline < -20:
			results = append(results, factorResult{
				Delta:  5,
				Issue:  fmt.Sprintf("Traffic growing %.0f%%", -decline),
				Action: "Capitalize on growth - optimize to accelerate",
			})
		}
	}

	if hist.Position < domain.PositionUnranked && in.Metrics.Position < domain.PositionUnranked {
		change := in.Metrics.Position - hist.Position
		switch {
		case change < -5:
			results = append(results, factorResult{
				Delta:  10,
				Issue:  fmt.Sprintf("Position improving (was %.0f)", hist.Position),
				Action: "Momentum detected - continue optimization",
			})
		case change > 5:
			// A worsening position is flagged without a score delta; the
			// traffic-decline branch above already prices the damage in.
			results = append(results, factorResult{
				Issue:  fmt.Sprintf("Position declining (was %.0f)", hist.Position),
				Action: "Stop the decline - investigate ranking drop",
			})
		}
	}

	return results
}

// readability penalizes scores strictly between 0 and 60. A zero score
// means "not computed" and stays neutral.
func readability(in factorInput) []factorResult {
	r := in.Content.ReadabilityScore
	if r > 0 && r < 60 {
		return []factorResult{{
			Delta:  -5,
			Issue:  fmt.Sprintf("Low readability (%d)", r),
			Action: "Improve readability - simplify content structure",
		}}
	}
	return nil
}
