package scoring

import (
	"sort"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

const (
	// DefaultCoreSize is the size of the tracked core set.
	DefaultCoreSize = 30
	// DefaultAttentionSize caps the attention report.
	DefaultAttentionSize = 50
	// AttentionThreshold is the minimum priority score; a page must
	// exceed it strictly to be reported.
	AttentionThreshold = 20
)

// Collect flattens a merged metrics map into a slice ordered by page
// path, which gives ranking a deterministic input order.
func Collect(merged map[string]domain.PageMetrics) []domain.PageMetrics {
	paths := make([]string, 0, len(merged))
	for path := range merged {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pages := make([]domain.PageMetrics, 0, len(paths))
	for _, path := range paths {
		pages = append(pages, merged[path])
	}
	return pages
}

// Rank scores every page and orders them by composite score descending,
// assigning 1-based rank positions. Equal scores keep their input order:
// the sort is stable and no secondary key is defined.
func Rank(pages []domain.PageMetrics) []domain.ScoredArticle {
	articles := make([]domain.ScoredArticle, 0, len(pages))
	for _, m := range pages {
		articles = append(articles, domain.ScoredArticle{
			Metrics: m,
			Score:   CompositeScore(m),
		})
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Score > articles[j].Score
	})
	for i := range articles {
		articles[i].Rank = i + 1
	}
	return articles
}

// TopN returns the leading n articles of an already ranked list.
func TopN(articles []domain.ScoredArticle, n int) []domain.ScoredArticle {
	if n < 0 {
		n = 0
	}
	if n > len(articles) {
		n = len(articles)
	}
	return articles[:n]
}

// SelectAttention keeps pages scoring above AttentionThreshold, orders
// them by priority descending (stable) and caps the list at limit.
func SelectAttention(articles []domain.AttentionArticle, limit int) []domain.AttentionArticle {
	kept := make([]domain.AttentionArticle, 0, len(articles))
	for _, a := range articles {
		if a.Score > AttentionThreshold {
			kept = append(kept, a)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
