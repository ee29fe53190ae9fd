package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

const snapshotsTable = "core_articles_snapshots"

// PostgresRepository persists snapshots, alerts and run bookkeeping.
type PostgresRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.SnapshotRepository = (*PostgresRepository)(nil)
var _ ports.AlertRepository = (*PostgresRepository)(nil)
var _ ports.RunRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveSnapshot upserts one row per scored article for the run date.
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, date time.Time, articles []domain.ScoredArticle) error {
	for _, article := range articles {
		query := r.builder.
			Insert(snapshotsTable).
			Columns(
				"snapshot_date", "page_path", "post_name", "post_id",
				"ga_pageviews", "ga_sessions", "ga_avg_duration",
				"gsc_clicks", "gsc_impressions", "gsc_ctr", "gsc_position",
				"wp_last_modified", "wp_days_since_update",
				"yoast_focus_keyword", "yoast_keyword_score",
				"yoast_readability_score", "yoast_is_cornerstone",
				"composite_score", "rank_position",
			).
			Values(
				date, article.Metrics.PagePath, domain.PostName(article.Metrics.PagePath), article.Content.PostID,
				article.Metrics.Pageviews, article.Metrics.Sessions, article.Metrics.AvgDuration,
				article.Metrics.Clicks, article.Metrics.Impressions, article.Metrics.CTR, article.Metrics.Position,
				nullTime(article.Content.LastModified), article.Content.DaysSinceUpdate,
				nullString(article.Content.FocusKeyword), article.Content.KeywordScore,
				article.Content.ReadabilityScore, article.Content.IsCornerstone,
				article.Score, article.Rank,
			).
			Suffix(`ON CONFLICT (snapshot_date, page_path) DO UPDATE SET
				ga_pageviews = EXCLUDED.ga_pageviews,
				gsc_clicks = EXCLUDED.gsc_clicks,
				composite_score = EXCLUDED.composite_score,
				rank_position = EXCLUDED.rank_position`)

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("build snapshot insert: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("upsert snapshot %s: %w", article.Metrics.PagePath, err)
		}
	}
	return nil
}

// LatestTopPaths returns the page paths of the most recent snapshot,
// ordered by rank position.
func (r *PostgresRepository) LatestTopPaths(ctx context.Context, limit int) ([]string, error) {
	query := r.builder.
		Select("page_path").
		From(snapshotsTable).
		Where(fmt.Sprintf("snapshot_date = (SELECT MAX(snapshot_date) FROM %s)", snapshotsTable)).
		OrderBy("rank_position").
		Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top paths query: %w", err)
	}

	var paths []string
	if err := r.db.SelectContext(ctx, &paths, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("query top paths: %w", err)
	}
	return paths, nil
}

type historicalRow struct {
	PagePath     string  `db:"page_path"`
	Pageviews    int     `db:"ga_pageviews"`
	Position     float64 `db:"gsc_position"`
	RankPosition int     `db:"rank_position"`
	Score        float64 `db:"composite_score"`
}

// PreviousSnapshots loads the newest snapshot strictly before the given
// date for the listed paths. Pages without a prior row are simply
// absent from the result; callers treat that as "no history".
func (r *PostgresRepository) PreviousSnapshots(ctx context.Context, before time.Time, paths []string) (map[string]domain.HistoricalSnapshot, error) {
	result := make(map[string]domain.HistoricalSnapshot, len(paths))
	if len(paths) == 0 {
		return result, nil
	}

	query := r.builder.
		Select("page_path", "ga_pageviews", "gsc_position", "rank_position", "composite_score").
		From(snapshotsTable).
		Where(fmt.Sprintf("snapshot_date = (SELECT MAX(snapshot_date) FROM %s WHERE snapshot_date < ?)", snapshotsTable), before).
		Where(sq.Eq{"page_path": paths})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build previous snapshots query: %w", err)
	}

	var rows []historicalRow
	if err := r.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("query previous snapshots: %w", err)
	}

	for _, row := range rows {
		result[row.PagePath] = domain.HistoricalSnapshot{
			PagePath:     row.PagePath,
			Pageviews:    row.Pageviews,
			Position:     row.Position,
			RankPosition: row.RankPosition,
			Score:        row.Score,
		}
	}
	return result, nil
}

// SaveAlerts appends alert rows for the run date. Existing rows are
// never touched.
func (r *PostgresRepository) SaveAlerts(ctx context.Context, date time.Time, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	query := r.builder.
		Insert("core_articles_alerts").
		Columns("snapshot_date", "page_path", "alert_type", "alert_severity", "alert_message", "metric_value")
	for _, alert := range alerts {
		query = query.Values(date, alert.PagePath, string(alert.Type), string(alert.Severity), alert.Message, alert.Value)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build alerts insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert alerts: %w", err)
	}
	return nil
}

// StartRun records a run row and returns its identifier.
func (r *PostgresRepository) StartRun(ctx context.Context, script string, startedAt time.Time) (int64, error) {
	query := r.builder.
		Insert("toolkit_runs").
		Columns("script_name", "status", "run_date").
		Values(script, string(domain.RunStarted), startedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build run insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// CompleteRun finalizes a run row with its outcome and counters.
func (r *PostgresRepository) CompleteRun(ctx context.Context, id int64, status domain.RunStatus, records, alertCount int, elapsed time.Duration) error {
	query := r.builder.
		Update("toolkit_runs").
		Set("status", string(status)).
		Set("records_processed", records).
		Set("alerts_generated", alertCount).
		Set("execution_time_seconds", int(elapsed.Seconds())).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build run update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	return nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullTime(v time.Time) any {
	if v.IsZero() {
		return nil
	}
	return v
}
