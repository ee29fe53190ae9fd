// Package alerts turns a scored article and its prior snapshot into
// typed, append-only alerts.
package alerts

import (
	"fmt"
	"strconv"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

const (
	outdatedWarningDays  = 180
	outdatedCriticalDays = 365
	lowReadabilityBelow  = 60
	poorRankingBeyond    = 20
	declineStepPositions = 5
	trafficDeclinePct    = 20
)

// Detect runs every alert check against the article. Checks are
// independent; one article can raise several alerts in one run.
// History-dependent checks are skipped when prev is nil. The
// PositionUnranked sentinel never participates in position checks.
func Detect(article domain.ScoredArticle, prev *domain.HistoricalSnapshot) []domain.Alert {
	var out []domain.Alert
	path := article.Metrics.PagePath

	if article.Content.FocusKeyword == "" {
		out = append(out, domain.Alert{
			PagePath: path,
			Type:     domain.AlertMissingFocusKeyword,
			Severity: domain.SeverityWarning,
			Message:  "Article has no focus keyword set",
			Value:    "NULL",
		})
	}

	if days := article.Content.DaysSinceUpdate; days >= outdatedWarningDays {
		severity := domain.SeverityWarning
		if days >= outdatedCriticalDays {
			severity = domain.SeverityCritical
		}
		out = append(out, domain.Alert{
			PagePath: path,
			Type:     domain.AlertContentOutdated,
			Severity: severity,
			Message:  fmt.Sprintf("Not updated in %d days", days),
			Value:    strconv.Itoa(days),
		})
	}

	if r := article.Content.ReadabilityScore; r > 0 && r < lowReadabilityBelow {
		out = append(out, domain.Alert{
			PagePath: path,
			Type:     domain.AlertLowReadability,
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Low readability score: %d", r),
			Value:    strconv.Itoa(r),
		})
	}

	if pos := article.Metrics.Position; pos > poorRankingBeyond && pos < domain.PositionUnranked {
		out = append(out, domain.Alert{
			PagePath: path,
			Type:     domain.AlertPoorRanking,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("Average position: %.1f", pos),
			Value:    fmt.Sprintf("%.1f", pos),
		})
	}

	if prev == nil {
		return out
	}

	if prev.RankPosition > 0 && article.Rank > prev.RankPosition+declineStepPositions {
		out = append(out, domain.Alert{
			PagePath: path,
			Type:     domain.AlertRankDeclined,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("Rank dropped from %d to %d", prev.RankPosition, article.Rank),
			Value:    fmt.Sprintf("%d → %d", prev.RankPosition, article.Rank),
		})
	}

	if prev.Position > 0 && prev.Position < domain.PositionUnranked &&
		article.Metrics.Position > 0 && article.Metrics.Position < domain.PositionUnranked {
		if change := article.Metrics.Position - prev.Position; change > declineStepPositions {
			out = append(out, domain.Alert{
				PagePath: path,
				Type:     domain.AlertPositionDeclined,
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("Search position worsened by %.1f", change),
				Value:    fmt.Sprintf("%.1f → %.1f", prev.Position, article.Metrics.Position),
			})
		}
	}

	if prev.Pageviews > 0 {
		change := float64(article.Metrics.Pageviews-prev.Pageviews) / float64(prev.Pageviews) * 100
		if change < -trafficDeclinePct {
			out = append(out, domain.Alert{
				PagePath: path,
				Type:     domain.AlertTrafficDeclined,
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("Traffic down %.1f%%", -change),
				Value:    fmt.Sprintf("%.1f%%", change),
			})
		}
	}

	return out
}
