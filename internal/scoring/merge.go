package scoring

import (
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

// Merge combines the traffic-source and search-source mappings into one
// record per page path, keyed by the union of both key sets. A page
// present in only one source keeps the documented defaults for the
// other: zero traffic counters, zero search counters and
// PositionUnranked for the average position.
func Merge(traffic map[string]domain.TrafficMetrics, search map[string]domain.SearchMetrics) map[string]domain.PageMetrics {
	merged := make(map[string]domain.PageMetrics, len(traffic)+len(search))

	for path, t := range traffic {
		merged[path] = domain.PageMetrics{
			PagePath:    path,
			Pageviews:   t.Pageviews,
			Sessions:    t.Sessions,
			AvgDuration: t.AvgDuration,
			Position:    domain.PositionUnranked,
		}
	}

	for path, s := range search {
		m, ok := merged[path]
		if !ok {
			m = domain.PageMetrics{PagePath: path}
		}
		m.Clicks = s.Clicks
		m.Impressions = s.Impressions
		m.CTR = s.CTR
		m.Position = s.Position
		merged[path] = m
	}

	return merged
}

// ExcludePaths drops every page whose path appears in the exclusion
// set, leaving the input map untouched.
func ExcludePaths(merged map[string]domain.PageMetrics, exclude map[string]struct{}) map[string]domain.PageMetrics {
	if len(exclude) == 0 {
		return merged
	}

	kept := make(map[string]domain.PageMetrics, len(merged))
	for path, m := range merged {
		if _, skip := exclude[path]; skip {
			continue
		}
		kept[path] = m
	}
	return kept
}
