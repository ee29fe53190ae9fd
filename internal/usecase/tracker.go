package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/alerts"
	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/metrics"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
	"github.com/lubosr/linuxconfig-toolkit/internal/scoring"
)

const trackerJobName = "core-article-tracker"

// TrackerDeps wires all driven adapters into the core tracking run.
// Runs, Reports and Notifier are optional; the rest are required.
type TrackerDeps struct {
	Traffic   ports.TrafficSource
	Search    ports.SearchSource
	Content   ports.ContentSource
	Snapshots ports.SnapshotRepository
	Alerts    ports.AlertRepository
	Runs      ports.RunRepository
	Reports   ports.ReportSink
	Notifier  ports.Notifier
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Tracker implements the core-article tracking run: merge, score, rank,
// enrich, detect changes, persist the snapshot and its alerts.
type Tracker struct {
	cfg       config.TrackingConfig
	traffic   ports.TrafficSource
	search    ports.SearchSource
	content   ports.ContentSource
	snapshots ports.SnapshotRepository
	alerts    ports.AlertRepository
	runs      ports.RunRepository
	reports   ports.ReportSink
	notifier  ports.Notifier
	logger    *slog.Logger
	clock     func() time.Time
}

// NewTracker constructs the tracking run orchestrator.
func NewTracker(cfg config.TrackingConfig, deps TrackerDeps) *Tracker {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cfg:       cfg,
		traffic:   deps.Traffic,
		search:    deps.Search,
		content:   deps.Content,
		snapshots: deps.Snapshots,
		alerts:    deps.Alerts,
		runs:      deps.Runs,
		reports:   deps.Reports,
		notifier:  deps.Notifier,
		logger:    logger,
		clock:     clock,
	}
}

type trackerResult struct {
	articles []domain.ScoredArticle
	alerts   []domain.Alert
}

// Run executes one complete tracking pass and records its outcome.
func (t *Tracker) Run(ctx context.Context) error {
	started := t.clock()

	var runID int64
	if t.runs != nil {
		id, err := t.runs.StartRun(ctx, trackerJobName, started)
		if err != nil {
			return fmt.Errorf("start run: %w", err)
		}
		runID = id
	}

	result, err := t.execute(ctx, started)

	status := domain.RunCompleted
	if err != nil {
		status = domain.RunFailed
	}
	elapsed := t.clock().Sub(started)
	metrics.ObserveRun(trackerJobName, string(status), elapsed, len(result.articles), len(result.alerts))

	if t.runs != nil {
		if completeErr := t.runs.CompleteRun(ctx, runID, status, len(result.articles), len(result.alerts), elapsed); completeErr != nil {
			if err == nil {
				return fmt.Errorf("complete run: %w", completeErr)
			}
			t.logger.Error("complete run", "error", completeErr)
		}
	}

	return err
}

func (t *Tracker) execute(ctx context.Context, date time.Time) (trackerResult, error) {
	var result trackerResult

	traffic, err := t.traffic.Fetch(ctx, t.cfg.WindowDays, t.cfg.CoreFetchLimit)
	if err != nil {
		return result, fmt.Errorf("fetch traffic metrics: %w", err)
	}
	search, err := t.search.Fetch(ctx, t.cfg.WindowDays, t.cfg.CoreFetchLimit)
	if err != nil {
		return result, fmt.Errorf("fetch search metrics: %w", err)
	}
	if len(traffic) == 0 && len(search) == 0 {
		return result, fmt.Errorf("no data returned from metric sources")
	}
	t.logger.Info("metrics fetched", "traffic_pages", len(traffic), "search_pages", len(search))

	merged := scoring.Merge(traffic, search)
	pages := scoring.Collect(merged)
	for _, m := range pages {
		if err := m.Validate(); err != nil {
			return result, fmt.Errorf("validate metrics: %w", err)
		}
	}

	ranked := scoring.Rank(pages)
	top := scoring.TopN(ranked, t.cfg.CoreSize)
	t.logger.Info("pages scored", "total", len(ranked), "core", len(top))

	if err := t.enrich(ctx, top); err != nil {
		return result, err
	}

	paths := make([]string, len(top))
	for i, article := range top {
		paths[i] = article.Metrics.PagePath
	}

	previous, err := t.snapshots.PreviousSnapshots(ctx, date, paths)
	if err != nil {
		return result, fmt.Errorf("load previous snapshots: %w", err)
	}

	var detected []domain.Alert
	for _, article := range top {
		var hist *domain.HistoricalSnapshot
		if prev, ok := previous[article.Metrics.PagePath]; ok {
			prevCopy := prev
			hist = &prevCopy
		}
		detected = append(detected, alerts.Detect(article, hist)...)
	}
	t.logger.Info("alerts generated", "count", len(detected))

	if err := t.snapshots.SaveSnapshot(ctx, date, top); err != nil {
		return result, fmt.Errorf("save snapshot: %w", err)
	}
	if len(detected) > 0 && t.alerts != nil {
		if err := t.alerts.SaveAlerts(ctx, date, detected); err != nil {
			return result, fmt.Errorf("save alerts: %w", err)
		}
	}

	result.articles = top
	result.alerts = detected

	if t.reports != nil {
		if err := t.reports.CoreReport(ctx, date, top, detected); err != nil {
			return result, fmt.Errorf("core report: %w", err)
		}
	}

	if t.notifier != nil {
		if digest := buildAlertDigest(date, detected); digest != "" {
			if err := t.notifier.PublishDigest(ctx, digest); err != nil {
				// A failed digest should not fail the run; the data is
				// already persisted.
				t.logger.Error("publish digest", "error", err)
			}
		}
	}

	return result, nil
}

// enrich attaches CMS metadata to the top articles, keyed by post slug.
// Articles with no metadata keep zero-value content; that is a
// documented default, not an error.
func (t *Tracker) enrich(ctx context.Context, articles []domain.ScoredArticle) error {
	names := make([]string, 0, len(articles))
	for _, article := range articles {
		if name := domain.PostName(article.Metrics.PagePath); name != "" {
			names = append(names, name)
		}
	}

	meta, err := t.content.Metadata(ctx, names)
	if err != nil {
		return fmt.Errorf("fetch content metadata: %w", err)
	}

	for i := range articles {
		if m, ok := meta[domain.PostName(articles[i].Metrics.PagePath)]; ok {
			articles[i].Content = m
		}
	}
	return nil
}

// buildAlertDigest formats the critical alerts of one run for the
// notification channel. Returns "" when nothing is critical.
func buildAlertDigest(date time.Time, detected []domain.Alert) string {
	var critical []domain.Alert
	for _, a := range detected {
		if a.Severity == domain.SeverityCritical {
			critical = append(critical, a)
		}
	}
	if len(critical) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Core articles %s: %d critical alerts\n", date.Format("2006-01-02"), len(critical))
	for _, a := range critical {
		fmt.Fprintf(&b, "- %s: %s\n", a.PagePath, a.Message)
	}
	return b.String()
}
