package domain

import (
	"fmt"
	"strings"
	"time"
)

// PositionUnranked is the average-position sentinel for pages without
// search ranking data. Comparisons against prior positions must skip it.
const PositionUnranked = 999

// TrafficMetrics is the analytics half of a page record.
type TrafficMetrics struct {
	Pageviews   int
	Sessions    int
	AvgDuration float64
}

// SearchMetrics is the search-console half of a page record.
type SearchMetrics struct {
	Clicks      int
	Impressions int
	CTR         float64
	Position    float64
}

// PageMetrics holds one reporting period of combined traffic and search
// data for a single page path.
type PageMetrics struct {
	PagePath    string
	Pageviews   int
	Sessions    int
	AvgDuration float64
	Clicks      int
	Impressions int
	CTR         float64 // fraction in [0,1]
	Position    float64 // average search position, PositionUnranked when unknown
}

// Validate fails fast on metric values that violate the caller contract.
// Missing data is not an error; it resolves to defaults during merge.
func (m PageMetrics) Validate() error {
	if m.Pageviews < 0 {
		return fmt.Errorf("page %s: pageviews is negative (%d)", m.PagePath, m.Pageviews)
	}
	if m.Sessions < 0 {
		return fmt.Errorf("page %s: sessions is negative (%d)", m.PagePath, m.Sessions)
	}
	if m.Clicks < 0 {
		return fmt.Errorf("page %s: clicks is negative (%d)", m.PagePath, m.Clicks)
	}
	if m.Impressions < 0 {
		return fmt.Errorf("page %s: impressions is negative (%d)", m.PagePath, m.Impressions)
	}
	if m.CTR < 0 || m.CTR > 1 {
		return fmt.Errorf("page %s: ctr %.4f outside [0,1]", m.PagePath, m.CTR)
	}
	if m.Position < 0 {
		return fmt.Errorf("page %s: position is negative (%.1f)", m.PagePath, m.Position)
	}
	return nil
}

// ContentMetadata describes the CMS side of an article, keyed by post slug.
type ContentMetadata struct {
	PostID           int
	PostName         string
	PostTitle        string
	LastModified     time.Time
	DaysSinceUpdate  int
	FocusKeyword     string // empty when not set
	KeywordScore     int
	ReadabilityScore int // 0 means not computed
	IsCornerstone    bool
}

// HistoricalSnapshot is one page's row from a previous run, read-only
// input for change detection.
type HistoricalSnapshot struct {
	PagePath     string
	Pageviews    int
	Position     float64
	RankPosition int // 0 when the page held no rank in that snapshot
	Score        float64
}

// WasTop30 reports whether the page sat inside the core set back then.
func (h HistoricalSnapshot) WasTop30() bool {
	return h.RankPosition > 0 && h.RankPosition <= 30
}

// ScoredArticle is a fully scored and ranked page for one run. Created
// once, never mutated; the full set becomes the persisted snapshot.
type ScoredArticle struct {
	Rank    int
	Metrics PageMetrics
	Content ContentMetadata
	Score   float64
}

// AttentionArticle is an under-performing page with its priority score
// and the explanations behind it. Not persisted beyond the report.
type AttentionArticle struct {
	Metrics PageMetrics
	Content ContentMetadata
	Score   float64
	Issues  []string
	Actions []string
}

// Category maps the priority score onto the reporting band.
func (a AttentionArticle) Category() PriorityCategory {
	return CategoryFor(a.Score)
}

// PriorityCategory buckets attention articles for display.
type PriorityCategory string

const (
	CategoryCritical PriorityCategory = "CRITICAL"
	CategoryHigh     PriorityCategory = "HIGH"
	CategoryMedium   PriorityCategory = "MEDIUM"
)

// CategoryFor applies the fixed band boundaries: critical at 80 and
// above, high from 50, everything reported below that is medium.
func CategoryFor(score float64) PriorityCategory {
	switch {
	case score >= 80:
		return CategoryCritical
	case score >= 50:
		return CategoryHigh
	default:
		return CategoryMedium
	}
}

// AlertType enumerates the change-detection checks.
type AlertType string

const (
	AlertMissingFocusKeyword AlertType = "missing_focus_keyword"
	AlertContentOutdated     AlertType = "content_outdated"
	AlertLowReadability      AlertType = "low_readability"
	AlertPoorRanking         AlertType = "poor_ranking"
	AlertRankDeclined        AlertType = "rank_declined"
	AlertPositionDeclined    AlertType = "position_declined"
	AlertTrafficDeclined     AlertType = "traffic_declined"
)

// Severity grades an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert is an append-only finding for one page. Repeated runs create
// new rows even when the same condition recurs.
type Alert struct {
	PagePath string
	Type     AlertType
	Severity Severity
	Message  string
	Value    string
}

// RunStatus tracks toolkit run bookkeeping.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// PostName derives the content lookup key from a page path: leading and
// trailing separators are stripped and the final segment is returned.
// This is the join key between traffic/search data and CMS metadata, so
// its treatment of trailing separators must not change.
func PostName(pagePath string) string {
	parts := strings.Split(strings.Trim(pagePath, "/"), "/")
	return parts[len(parts)-1]
}
