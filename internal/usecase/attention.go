package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/metrics"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
	"github.com/lubosr/linuxconfig-toolkit/internal/scoring"
)

const attentionJobName = "attention-finder"

// AttentionDeps wires the adapters used by the attention-finder run.
// Runs and Reports are optional.
type AttentionDeps struct {
	Traffic   ports.TrafficSource
	Search    ports.SearchSource
	Content   ports.ContentSource
	Snapshots ports.SnapshotRepository
	Runs      ports.RunRepository
	Reports   ports.ReportSink
	Logger    *slog.Logger
	Clock     func() time.Time
}

// AttentionFinder prioritizes under-performing pages outside the core
// set and explains what to do about each of them.
type AttentionFinder struct {
	cfg       config.TrackingConfig
	traffic   ports.TrafficSource
	search    ports.SearchSource
	content   ports.ContentSource
	snapshots ports.SnapshotRepository
	runs      ports.RunRepository
	reports   ports.ReportSink
	logger    *slog.Logger
	clock     func() time.Time
}

// NewAttentionFinder constructs the attention run orchestrator.
func NewAttentionFinder(cfg config.TrackingConfig, deps AttentionDeps) *AttentionFinder {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AttentionFinder{
		cfg:       cfg,
		traffic:   deps.Traffic,
		search:    deps.Search,
		content:   deps.Content,
		snapshots: deps.Snapshots,
		runs:      deps.Runs,
		reports:   deps.Reports,
		logger:    logger,
		clock:     clock,
	}
}

// Run executes one attention-finder pass and records its outcome.
func (f *AttentionFinder) Run(ctx context.Context) error {
	started := f.clock()

	var runID int64
	if f.runs != nil {
		id, err := f.runs.StartRun(ctx, attentionJobName, started)
		if err != nil {
			return fmt.Errorf("start run: %w", err)
		}
		runID = id
	}

	selected, err := f.execute(ctx, started)

	status := domain.RunCompleted
	if err != nil {
		status = domain.RunFailed
	}
	elapsed := f.clock().Sub(started)
	metrics.ObserveRun(attentionJobName, string(status), elapsed, len(selected), 0)

	if f.runs != nil {
		if completeErr := f.runs.CompleteRun(ctx, runID, status, len(selected), 0, elapsed); completeErr != nil {
			if err == nil {
				return fmt.Errorf("complete run: %w", completeErr)
			}
			f.logger.Error("complete run", "error", completeErr)
		}
	}

	return err
}

func (f *AttentionFinder) execute(ctx context.Context, date time.Time) ([]domain.AttentionArticle, error) {
	topPaths, err := f.snapshots.LatestTopPaths(ctx, f.cfg.CoreSize)
	if err != nil {
		return nil, fmt.Errorf("load top paths: %w", err)
	}
	exclude := make(map[string]struct{}, len(topPaths))
	for _, path := range topPaths {
		exclude[path] = struct{}{}
	}
	f.logger.Info("excluding core articles", "count", len(exclude))

	traffic, err := f.traffic.Fetch(ctx, f.cfg.WindowDays, f.cfg.AttentionFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch traffic metrics: %w", err)
	}
	search, err := f.search.Fetch(ctx, f.cfg.WindowDays, f.cfg.AttentionFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch search metrics: %w", err)
	}
	if len(traffic) == 0 && len(search) == 0 {
		return nil, fmt.Errorf("no data returned from metric sources")
	}

	merged := scoring.ExcludePaths(scoring.Merge(traffic, search), exclude)
	pages := scoring.Collect(merged)
	for _, m := range pages {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("validate metrics: %w", err)
		}
	}
	f.logger.Info("analyzing articles", "count", len(pages))

	names := make([]string, 0, len(pages))
	paths := make([]string, 0, len(pages))
	for _, m := range pages {
		paths = append(paths, m.PagePath)
		if name := domain.PostName(m.PagePath); name != "" {
			names = append(names, name)
		}
	}

	meta, err := f.content.Metadata(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("fetch content metadata: %w", err)
	}

	previous, err := f.snapshots.PreviousSnapshots(ctx, date, paths)
	if err != nil {
		return nil, fmt.Errorf("load previous snapshots: %w", err)
	}

	candidates := make([]domain.AttentionArticle, 0, len(pages))
	for _, m := range pages {
		content := meta[domain.PostName(m.PagePath)]

		var hist *domain.HistoricalSnapshot
		if prev, ok := previous[m.PagePath]; ok {
			prevCopy := prev
			hist = &prevCopy
		}

		score, issues, actions := scoring.PriorityScore(m, content, hist)
		candidates = append(candidates, domain.AttentionArticle{
			Metrics: m,
			Content: content,
			Score:   score,
			Issues:  issues,
			Actions: actions,
		})
	}

	selected := scoring.SelectAttention(candidates, f.cfg.AttentionSize)
	f.logger.Info("attention articles selected", "candidates", len(candidates), "selected", len(selected))

	if f.reports != nil {
		if err := f.reports.AttentionReport(ctx, date, selected); err != nil {
			return selected, fmt.Errorf("attention report: %w", err)
		}
	}

	return selected, nil
}
