package alerts

import (
	"testing"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

func healthyArticle() domain.ScoredArticle {
	return domain.ScoredArticle{
		Rank: 5,
		Metrics: domain.PageMetrics{
			PagePath:  "/bash-scripting/",
			Pageviews: 1000,
			Position:  3.5,
		},
		Content: domain.ContentMetadata{
			FocusKeyword:     "bash scripting",
			DaysSinceUpdate:  30,
			ReadabilityScore: 75,
		},
	}
}

func alertTypes(alerts []domain.Alert) map[domain.AlertType]domain.Alert {
	m := make(map[domain.AlertType]domain.Alert, len(alerts))
	for _, a := range alerts {
		m[a.Type] = a
	}
	return m
}

func TestDetectHealthyArticleNoAlerts(t *testing.T) {
	t.Parallel()

	prev := &domain.HistoricalSnapshot{
		PagePath:     "/bash-scripting/",
		Pageviews:    1000,
		Position:     3.5,
		RankPosition: 5,
	}
	if got := Detect(healthyArticle(), prev); len(got) != 0 {
		t.Fatalf("expected no alerts, got %+v", got)
	}
}

func TestDetectMissingFocusKeyword(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Content.FocusKeyword = ""

	got := alertTypes(Detect(a, nil))
	alert, ok := got[domain.AlertMissingFocusKeyword]
	if !ok {
		t.Fatal("expected missing_focus_keyword alert")
	}
	if alert.Severity != domain.SeverityWarning {
		t.Errorf("severity = %s, want warning", alert.Severity)
	}
	if alert.Value != "NULL" {
		t.Errorf("value = %q, want NULL", alert.Value)
	}
}

func TestDetectContentOutdatedSeverity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		days     int
		fires    bool
		severity domain.Severity
	}{
		{179, false, ""},
		{180, true, domain.SeverityWarning},
		{364, true, domain.SeverityWarning},
		{365, true, domain.SeverityCritical},
		{400, true, domain.SeverityCritical},
	}

	for _, tc := range cases {
		a := healthyArticle()
		a.Content.DaysSinceUpdate = tc.days

		got := alertTypes(Detect(a, nil))
		alert, ok := got[domain.AlertContentOutdated]
		if ok != tc.fires {
			t.Errorf("days %d: fired=%v, want %v", tc.days, ok, tc.fires)
			continue
		}
		if ok && alert.Severity != tc.severity {
			t.Errorf("days %d: severity = %s, want %s", tc.days, alert.Severity, tc.severity)
		}
	}
}

func TestDetectLowReadability(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Content.ReadabilityScore = 45

	got := alertTypes(Detect(a, nil))
	alert, ok := got[domain.AlertLowReadability]
	if !ok {
		t.Fatal("expected low_readability alert")
	}
	if alert.Severity != domain.SeverityInfo {
		t.Errorf("severity = %s, want info", alert.Severity)
	}

	// Zero means the score was never computed.
	a.Content.ReadabilityScore = 0
	if got := alertTypes(Detect(a, nil)); len(got) != 0 {
		t.Errorf("readability 0 must not alert, got %+v", got)
	}
}

func TestDetectPoorRankingSkipsSentinel(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Metrics.Position = 25.3
	if _, ok := alertTypes(Detect(a, nil))[domain.AlertPoorRanking]; !ok {
		t.Error("position 25.3 should raise poor_ranking")
	}

	a.Metrics.Position = 20
	if _, ok := alertTypes(Detect(a, nil))[domain.AlertPoorRanking]; ok {
		t.Error("position 20 must not raise poor_ranking")
	}

	a.Metrics.Position = domain.PositionUnranked
	if _, ok := alertTypes(Detect(a, nil))[domain.AlertPoorRanking]; ok {
		t.Error("unranked sentinel must not raise poor_ranking")
	}
}

func TestDetectRankDeclined(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Rank = 12
	prev := &domain.HistoricalSnapshot{RankPosition: 6, Pageviews: 1000, Position: 3.5}

	got := alertTypes(Detect(a, prev))
	alert, ok := got[domain.AlertRankDeclined]
	if !ok {
		t.Fatal("drop from rank 6 to 12 should alert")
	}
	if alert.Value != "6 → 12" {
		t.Errorf("value = %q, want \"6 → 12\"", alert.Value)
	}

	// A drop of exactly 5 positions stays quiet.
	a.Rank = 11
	if _, ok := alertTypes(Detect(a, prev))[domain.AlertRankDeclined]; ok {
		t.Error("drop of exactly 5 must not alert")
	}

	// A page new to the ranking has no baseline.
	a.Rank = 30
	prevNew := &domain.HistoricalSnapshot{RankPosition: 0, Pageviews: 1000, Position: 3.5}
	if _, ok := alertTypes(Detect(a, prevNew))[domain.AlertRankDeclined]; ok {
		t.Error("zero previous rank must not alert")
	}
}

func TestDetectPositionDeclined(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Metrics.Position = 14
	prev := &domain.HistoricalSnapshot{Position: 8, Pageviews: 1000, RankPosition: 5}

	got := alertTypes(Detect(a, prev))
	if _, ok := got[domain.AlertPositionDeclined]; !ok {
		t.Fatal("worsening by 6 positions should alert")
	}

	// Improvement or small drift never alerts.
	a.Metrics.Position = 6
	if _, ok := alertTypes(Detect(a, prev))[domain.AlertPositionDeclined]; ok {
		t.Error("improvement must not alert")
	}

	// Either side at the sentinel skips the comparison.
	a.Metrics.Position = domain.PositionUnranked
	if _, ok := alertTypes(Detect(a, prev))[domain.AlertPositionDeclined]; ok {
		t.Error("sentinel current position must not alert")
	}
	a.Metrics.Position = 14
	prevUnranked := &domain.HistoricalSnapshot{Position: domain.PositionUnranked, Pageviews: 1000, RankPosition: 5}
	if _, ok := alertTypes(Detect(a, prevUnranked))[domain.AlertPositionDeclined]; ok {
		t.Error("sentinel previous position must not alert")
	}
}

func TestDetectTrafficDeclined(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Metrics.Pageviews = 700
	prev := &domain.HistoricalSnapshot{Pageviews: 1000, Position: 3.5, RankPosition: 5}

	got := alertTypes(Detect(a, prev))
	alert, ok := got[domain.AlertTrafficDeclined]
	if !ok {
		t.Fatal("30% decline should alert")
	}
	if alert.Value != "-30.0%" {
		t.Errorf("value = %q, want \"-30.0%%\"", alert.Value)
	}

	// Exactly -20% stays quiet, as does flat traffic.
	a.Metrics.Pageviews = 800
	if _, ok := alertTypes(Detect(a, prev))[domain.AlertTrafficDeclined]; ok {
		t.Error("exactly -20% must not alert")
	}
	a.Metrics.Pageviews = 1000
	if _, ok := alertTypes(Detect(a, prev))[domain.AlertTrafficDeclined]; ok {
		t.Error("flat traffic must not alert")
	}

	// No baseline, no alert.
	prevZero := &domain.HistoricalSnapshot{Pageviews: 0, Position: 3.5, RankPosition: 5}
	a.Metrics.Pageviews = 10
	if _, ok := alertTypes(Detect(a, prevZero))[domain.AlertTrafficDeclined]; ok {
		t.Error("zero previous pageviews must not alert")
	}
}

func TestDetectChecksAreIndependent(t *testing.T) {
	t.Parallel()

	a := domain.ScoredArticle{
		Rank: 20,
		Metrics: domain.PageMetrics{
			PagePath:  "/neglected-article/",
			Pageviews: 100,
			Position:  35,
		},
		Content: domain.ContentMetadata{
			DaysSinceUpdate:  500,
			ReadabilityScore: 40,
		},
	}
	prev := &domain.HistoricalSnapshot{
		Pageviews:    1000,
		Position:     15,
		RankPosition: 4,
	}

	got := Detect(a, prev)
	if len(got) != 7 {
		t.Fatalf("expected all 7 alert types, got %d: %+v", len(got), got)
	}
	for _, alert := range got {
		if alert.PagePath != "/neglected-article/" {
			t.Errorf("alert %s has wrong page path %q", alert.Type, alert.PagePath)
		}
	}
}

func TestDetectNilHistorySkipsComparisons(t *testing.T) {
	t.Parallel()

	a := healthyArticle()
	a.Rank = 100
	a.Metrics.Pageviews = 1

	if got := Detect(a, nil); len(got) != 0 {
		t.Fatalf("history checks need a snapshot, got %+v", got)
	}
}
