package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

type fakeTraffic struct {
	pages map[string]domain.TrafficMetrics
	err   error
}

func (f *fakeTraffic) Fetch(_ context.Context, _, _ int) (map[string]domain.TrafficMetrics, error) {
	return f.pages, f.err
}

type fakeSearch struct {
	pages map[string]domain.SearchMetrics
	err   error
}

func (f *fakeSearch) Fetch(_ context.Context, _, _ int) (map[string]domain.SearchMetrics, error) {
	return f.pages, f.err
}

type fakeContent struct {
	meta map[string]domain.ContentMetadata
}

func (f *fakeContent) Metadata(_ context.Context, _ []string) (map[string]domain.ContentMetadata, error) {
	return f.meta, nil
}

type fakeSnapshots struct {
	topPaths []string
	previous map[string]domain.HistoricalSnapshot

	saved     []domain.ScoredArticle
	savedDate time.Time
}

func (f *fakeSnapshots) SaveSnapshot(_ context.Context, date time.Time, articles []domain.ScoredArticle) error {
	f.savedDate = date
	f.saved = append([]domain.ScoredArticle(nil), articles...)
	return nil
}

func (f *fakeSnapshots) LatestTopPaths(_ context.Context, _ int) ([]string, error) {
	return f.topPaths, nil
}

func (f *fakeSnapshots) PreviousSnapshots(_ context.Context, _ time.Time, _ []string) (map[string]domain.HistoricalSnapshot, error) {
	return f.previous, nil
}

type fakeAlerts struct {
	saved []domain.Alert
}

func (f *fakeAlerts) SaveAlerts(_ context.Context, _ time.Time, alerts []domain.Alert) error {
	f.saved = append(f.saved, alerts...)
	return nil
}

type fakeRuns struct {
	started   int
	status    domain.RunStatus
	records   int
	alerts    int
	completed bool
}

func (f *fakeRuns) StartRun(_ context.Context, _ string, _ time.Time) (int64, error) {
	f.started++
	return 42, nil
}

func (f *fakeRuns) CompleteRun(_ context.Context, id int64, status domain.RunStatus, records, alertCount int, _ time.Duration) error {
	if id != 42 {
		return errors.New("unknown run id")
	}
	f.completed = true
	f.status = status
	f.records = records
	f.alerts = alertCount
	return nil
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.digests = append(f.digests, digest)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTrackingConfig() config.TrackingConfig {
	return config.TrackingConfig{
		WindowDays:          90,
		CoreFetchLimit:      100,
		AttentionFetchLimit: 500,
		CoreSize:            2,
		AttentionSize:       50,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTrackerRunPersistsTopArticles(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	snapshots := &fakeSnapshots{}
	alertRepo := &fakeAlerts{}
	runs := &fakeRuns{}

	tracker := NewTracker(testTrackingConfig(), TrackerDeps{
		Traffic: &fakeTraffic{pages: map[string]domain.TrafficMetrics{
			"/vim-basics/": {Pageviews: 5000, Sessions: 4000},
			"/sed-awk/":    {Pageviews: 3000, Sessions: 2500},
			"/rare-topic/": {Pageviews: 10, Sessions: 8},
		}},
		Search: &fakeSearch{pages: map[string]domain.SearchMetrics{
			"/vim-basics/": {Clicks: 900, Impressions: 20000, CTR: 0.045, Position: 3.2},
			"/sed-awk/":    {Clicks: 400, Impressions: 9000, CTR: 0.044, Position: 6.8},
		}},
		Content: &fakeContent{meta: map[string]domain.ContentMetadata{
			"vim-basics": {PostName: "vim-basics", FocusKeyword: "vim", DaysSinceUpdate: 20, ReadabilityScore: 80},
			"sed-awk":    {PostName: "sed-awk", DaysSinceUpdate: 400, ReadabilityScore: 70},
		}},
		Snapshots: snapshots,
		Alerts:    alertRepo,
		Runs:      runs,
		Logger:    testLogger(),
		Clock:     fixedClock(now),
	})

	if err := tracker.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(snapshots.saved) != 2 {
		t.Fatalf("expected core size 2 persisted, got %d", len(snapshots.saved))
	}
	if snapshots.saved[0].Metrics.PagePath != "/vim-basics/" {
		t.Errorf("rank 1 = %q, want /vim-basics/", snapshots.saved[0].Metrics.PagePath)
	}
	if snapshots.saved[0].Rank != 1 || snapshots.saved[1].Rank != 2 {
		t.Errorf("ranks = %d, %d", snapshots.saved[0].Rank, snapshots.saved[1].Rank)
	}
	if !snapshots.savedDate.Equal(now) {
		t.Errorf("snapshot date = %v, want %v", snapshots.savedDate, now)
	}
	if snapshots.saved[0].Content.FocusKeyword != "vim" {
		t.Errorf("metadata not attached: %+v", snapshots.saved[0].Content)
	}

	// sed-awk is stale and missing its keyword.
	if len(alertRepo.saved) != 2 {
		t.Fatalf("expected 2 alerts persisted, got %+v", alertRepo.saved)
	}
	for _, a := range alertRepo.saved {
		if a.PagePath != "/sed-awk/" {
			t.Errorf("unexpected alert page %q", a.PagePath)
		}
	}

	if runs.started != 1 || !runs.completed {
		t.Fatal("run bookkeeping not recorded")
	}
	if runs.status != domain.RunCompleted {
		t.Errorf("run status = %s, want completed", runs.status)
	}
	if runs.records != 2 || runs.alerts != 2 {
		t.Errorf("run counters = %d records, %d alerts", runs.records, runs.alerts)
	}
}

func TestTrackerRunFailsWithoutData(t *testing.T) {
	t.Parallel()

	runs := &fakeRuns{}
	tracker := NewTracker(testTrackingConfig(), TrackerDeps{
		Traffic:   &fakeTraffic{},
		Search:    &fakeSearch{},
		Content:   &fakeContent{},
		Snapshots: &fakeSnapshots{},
		Alerts:    &fakeAlerts{},
		Runs:      runs,
		Logger:    testLogger(),
	})

	err := tracker.Run(context.Background())
	if err == nil {
		t.Fatal("expected error with empty sources")
	}
	if runs.status != domain.RunFailed {
		t.Errorf("run status = %s, want failed", runs.status)
	}
}

func TestTrackerRunWrapsSourceErrors(t *testing.T) {
	t.Parallel()

	sourceErr := errors.New("analytics unavailable")
	tracker := NewTracker(testTrackingConfig(), TrackerDeps{
		Traffic:   &fakeTraffic{err: sourceErr},
		Search:    &fakeSearch{},
		Content:   &fakeContent{},
		Snapshots: &fakeSnapshots{},
		Logger:    testLogger(),
	})

	err := tracker.Run(context.Background())
	if !errors.Is(err, sourceErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestTrackerDigestOnlyCarriesCritical(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	tracker := NewTracker(testTrackingConfig(), TrackerDeps{
		Traffic: &fakeTraffic{pages: map[string]domain.TrafficMetrics{
			"/ancient-howto/": {Pageviews: 500, Sessions: 400},
			"/fresh-howto/":   {Pageviews: 400, Sessions: 300},
		}},
		Search: &fakeSearch{pages: map[string]domain.SearchMetrics{}},
		Content: &fakeContent{meta: map[string]domain.ContentMetadata{
			"ancient-howto": {FocusKeyword: "howto", DaysSinceUpdate: 500, ReadabilityScore: 80},
			"fresh-howto":   {FocusKeyword: "howto", DaysSinceUpdate: 200, ReadabilityScore: 80},
		}},
		Snapshots: &fakeSnapshots{},
		Alerts:    &fakeAlerts{},
		Notifier:  notifier,
		Logger:    testLogger(),
	})

	if err := tracker.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.digests))
	}
	digest := notifier.digests[0]
	if !strings.Contains(digest, "/ancient-howto/") {
		t.Errorf("digest misses the critical page: %q", digest)
	}
	if strings.Contains(digest, "/fresh-howto/") {
		t.Errorf("warning-level alert leaked into digest: %q", digest)
	}
}

func TestTrackerDigestFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("telegram down")}
	tracker := NewTracker(testTrackingConfig(), TrackerDeps{
		Traffic: &fakeTraffic{pages: map[string]domain.TrafficMetrics{
			"/ancient-howto/": {Pageviews: 500, Sessions: 400},
		}},
		Search: &fakeSearch{pages: map[string]domain.SearchMetrics{}},
		Content: &fakeContent{meta: map[string]domain.ContentMetadata{
			"ancient-howto": {FocusKeyword: "howto", DaysSinceUpdate: 500, ReadabilityScore: 80},
		}},
		Snapshots: &fakeSnapshots{},
		Alerts:    &fakeAlerts{},
		Notifier:  notifier,
		Logger:    testLogger(),
	})

	if err := tracker.Run(context.Background()); err != nil {
		t.Fatalf("digest failure must not fail the run: %v", err)
	}
}
