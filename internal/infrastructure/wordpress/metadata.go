// Package wordpress reads post and Yoast SEO metadata from the
// WordPress database replica.
package wordpress

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

// Repository implements ports.ContentSource over the WordPress schema.
type Repository struct {
	db          *sqlx.DB
	tablePrefix string
	builder     sq.StatementBuilderType
	clock       func() time.Time
}

var _ ports.ContentSource = (*Repository)(nil)

// NewRepository wires the WordPress database handle. The clock is
// injected so days-since-update stays reproducible in tests.
func NewRepository(db *sqlx.DB, tablePrefix string, clock func() time.Time) *Repository {
	if tablePrefix == "" {
		tablePrefix = "wp_"
	}
	if clock == nil {
		clock = time.Now
	}
	return &Repository{
		db:          db,
		tablePrefix: tablePrefix,
		builder:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		clock:       clock,
	}
}

type metadataRow struct {
	PostID           int       `db:"post_id"`
	PostName         string    `db:"post_name"`
	PostTitle        string    `db:"post_title"`
	PostModified     time.Time `db:"post_modified"`
	FocusKeyword     string    `db:"focus_keyword"`
	KeywordScore     int       `db:"keyword_score"`
	ReadabilityScore int       `db:"readability_score"`
	IsCornerstone    bool      `db:"is_cornerstone"`
}

// Metadata returns published-post metadata keyed by post slug. Slugs
// without a published post are absent from the result; the caller
// falls back to zero-value metadata.
func (r *Repository) Metadata(ctx context.Context, postNames []string) (map[string]domain.ContentMetadata, error) {
	result := make(map[string]domain.ContentMetadata, len(postNames))
	if len(postNames) == 0 {
		return result, nil
	}

	query := r.builder.
		Select(
			"p.id AS post_id",
			"p.post_name",
			"p.post_title",
			"p.post_modified",
			"COALESCE(y.primary_focus_keyword, '') AS focus_keyword",
			"COALESCE(y.primary_focus_keyword_score, 0) AS keyword_score",
			"COALESCE(y.readability_score, 0) AS readability_score",
			"COALESCE(y.is_cornerstone, FALSE) AS is_cornerstone",
		).
		From(r.tablePrefix + "posts p").
		LeftJoin(r.tablePrefix + "yoast_indexable y ON y.object_id = p.id AND y.object_type = 'post'").
		Where(sq.Eq{"p.post_type": "post", "p.post_status": "publish"}).
		Where(sq.Eq{"p.post_name": postNames})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build metadata query: %w", err)
	}

	var rows []metadataRow
	if err := r.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("query post metadata: %w", err)
	}

	now := r.clock()
	for _, row := range rows {
		days := int(now.Sub(row.PostModified).Hours() / 24)
		if days < 0 {
			days = 0
		}
		result[row.PostName] = domain.ContentMetadata{
			PostID:           row.PostID,
			PostName:         row.PostName,
			PostTitle:        row.PostTitle,
			LastModified:     row.PostModified,
			DaysSinceUpdate:  days,
			FocusKeyword:     row.FocusKeyword,
			KeywordScore:     row.KeywordScore,
			ReadabilityScore: row.ReadabilityScore,
			IsCornerstone:    row.IsCornerstone,
		}
	}
	return result, nil
}
