// Package report renders run artifacts as console tables and CSV files.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

// Writer renders reports to a console stream and CSV files in a
// directory.
type Writer struct {
	out    io.Writer
	cfg    config.ReportsConfig
	logger *slog.Logger
}

var _ ports.ReportSink = (*Writer)(nil)

// NewWriter wires the console stream and report directory settings.
func NewWriter(out io.Writer, cfg config.ReportsConfig, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{out: out, cfg: cfg, logger: logger}
}

// CoreReport prints the ranked core set with its alert summary and
// writes the detailed CSV.
func (w *Writer) CoreReport(_ context.Context, date time.Time, articles []domain.ScoredArticle, alerts []domain.Alert) error {
	fmt.Fprintf(w.out, "CORE ARTICLES REPORT (%s)\n\n", date.Format("2006-01-02"))

	table := tablewriter.NewWriter(w.out)
	table.SetHeader([]string{"Rank", "Page", "Score", "Views", "Clicks", "Pos", "Days Old"})
	for _, a := range articles {
		table.Append([]string{
			strconv.Itoa(a.Rank),
			truncate(a.Metrics.PagePath, 60),
			fmt.Sprintf("%.0f", a.Score),
			strconv.Itoa(a.Metrics.Pageviews),
			strconv.Itoa(a.Metrics.Clicks),
			fmt.Sprintf("%.1f", a.Metrics.Position),
			strconv.Itoa(a.Content.DaysSinceUpdate),
		})
	}
	table.Render()

	w.printAlertSummary(alerts)

	if err := w.writeCoreCSV(date, articles, alerts); err != nil {
		return fmt.Errorf("write core csv: %w", err)
	}
	return nil
}

func (w *Writer) printAlertSummary(alerts []domain.Alert) {
	if len(alerts) == 0 {
		return
	}
	fmt.Fprintf(w.out, "\nALERTS (%d total)\n", len(alerts))

	for _, severity := range []domain.Severity{domain.SeverityCritical, domain.SeverityWarning, domain.SeverityInfo} {
		var group []domain.Alert
		for _, a := range alerts {
			if a.Severity == severity {
				group = append(group, a)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w.out, "\n%s (%d):\n", severity, len(group))
		for _, a := range group {
			fmt.Fprintf(w.out, "  - %s: %s\n", truncate(a.PagePath, 60), a.Message)
		}
	}
}

// AttentionReport prints the prioritized articles grouped by category
// and writes the detailed CSV.
func (w *Writer) AttentionReport(_ context.Context, date time.Time, articles []domain.AttentionArticle) error {
	fmt.Fprintf(w.out, "ATTENTION NEEDED ARTICLES (%s)\n\n", date.Format("2006-01-02"))

	if len(articles) == 0 {
		fmt.Fprintln(w.out, "No articles need urgent attention.")
		return nil
	}

	var critical, high, medium []domain.AttentionArticle
	for _, a := range articles {
		switch a.Category() {
		case domain.CategoryCritical:
			critical = append(critical, a)
		case domain.CategoryHigh:
			high = append(high, a)
		default:
			medium = append(medium, a)
		}
	}

	fmt.Fprintf(w.out, "Found %d articles: %d critical, %d high, %d medium\n",
		len(articles), len(critical), len(high), len(medium))

	if len(critical) > 0 {
		fmt.Fprintln(w.out, "\nCRITICAL - act this week:")
		for i, a := range critical {
			fmt.Fprintf(w.out, "\n%d. [Score: %.0f] %s\n", i+1, a.Score, a.Content.PostTitle)
			fmt.Fprintf(w.out, "   URL: %s%s\n", w.cfg.DevSiteURL, a.Metrics.PagePath)
			fmt.Fprintf(w.out, "   Metrics: %d views, %d clicks, pos %.1f\n",
				a.Metrics.Pageviews, a.Metrics.Clicks, a.Metrics.Position)
			for _, action := range a.Actions {
				fmt.Fprintf(w.out, "   -> %s\n", action)
			}
		}
	}

	if len(high) > 0 {
		fmt.Fprintln(w.out, "\nHIGH PRIORITY - next two weeks:")
		table := tablewriter.NewWriter(w.out)
		table.SetHeader([]string{"Score", "ID", "Title", "Views", "Clicks", "Pos", "Days"})
		limit := len(high)
		if limit > 10 {
			limit = 10
		}
		for _, a := range high[:limit] {
			table.Append([]string{
				fmt.Sprintf("%.0f", a.Score),
				strconv.Itoa(a.Content.PostID),
				truncate(a.Content.PostTitle, 40),
				strconv.Itoa(a.Metrics.Pageviews),
				strconv.Itoa(a.Metrics.Clicks),
				fmt.Sprintf("%.1f", a.Metrics.Position),
				strconv.Itoa(a.Content.DaysSinceUpdate),
			})
		}
		table.Render()
		if len(high) > limit {
			fmt.Fprintf(w.out, "... and %d more (see CSV)\n", len(high)-limit)
		}
	}

	if len(medium) > 0 {
		fmt.Fprintf(w.out, "\nMEDIUM PRIORITY: %d articles (see CSV for details)\n", len(medium))
	}

	if err := w.writeAttentionCSV(date, articles); err != nil {
		return fmt.Errorf("write attention csv: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
