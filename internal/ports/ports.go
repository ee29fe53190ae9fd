package ports

import (
	"context"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

// TrafficSource pulls per-page traffic metrics for a trailing window.
type TrafficSource interface {
	Fetch(ctx context.Context, days, limit int) (map[string]domain.TrafficMetrics, error)
}

// SearchSource pulls per-page search metrics for a trailing window.
type SearchSource interface {
	Fetch(ctx context.Context, days, limit int) (map[string]domain.SearchMetrics, error)
}

// ContentSource resolves CMS metadata by post slug.
type ContentSource interface {
	Metadata(ctx context.Context, postNames []string) (map[string]domain.ContentMetadata, error)
}

// SnapshotRepository persists one run's scored articles and serves
// prior snapshots for comparison.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, date time.Time, articles []domain.ScoredArticle) error
	LatestTopPaths(ctx context.Context, limit int) ([]string, error)
	PreviousSnapshots(ctx context.Context, before time.Time, paths []string) (map[string]domain.HistoricalSnapshot, error)
}

// AlertRepository stores alerts append-only.
type AlertRepository interface {
	SaveAlerts(ctx context.Context, date time.Time, alerts []domain.Alert) error
}

// RunRepository records toolkit run bookkeeping rows.
type RunRepository interface {
	StartRun(ctx context.Context, script string, startedAt time.Time) (int64, error)
	CompleteRun(ctx context.Context, id int64, status domain.RunStatus, records, alertCount int, elapsed time.Duration) error
}

// Notifier pushes alert digests to an external channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ReportSink renders the run artifacts for humans.
type ReportSink interface {
	CoreReport(ctx context.Context, date time.Time, articles []domain.ScoredArticle, alerts []domain.Alert) error
	AttentionReport(ctx context.Context, date time.Time, articles []domain.AttentionArticle) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Schedule(spec string, job func()) error
	Start()
	Stop(ctx context.Context) error
}
