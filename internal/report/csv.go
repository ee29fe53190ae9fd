package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
)

func (w *Writer) writeCoreCSV(date time.Time, articles []domain.ScoredArticle, alerts []domain.Alert) error {
	alertsByPath := make(map[string][]string)
	for _, a := range alerts {
		alertsByPath[a.PagePath] = append(alertsByPath[a.PagePath], a.Message)
	}

	path := filepath.Join(w.cfg.Dir, fmt.Sprintf("core_articles_%s.csv", date.Format("2006-01-02")))
	file, err := w.createReportFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"Rank", "Page Path", "Post Title", "Full URL", "Score",
		"Pageviews", "Sessions", "GSC Clicks", "GSC Impressions",
		"Avg Position", "CTR", "Avg Duration (sec)",
		"Last Modified", "Days Since Update", "Focus Keyword",
		"Keyword Score", "Readability", "Is Cornerstone", "Alerts",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, a := range articles {
		lastModified := ""
		if !a.Content.LastModified.IsZero() {
			lastModified = a.Content.LastModified.Format("2006-01-02")
		}
		cornerstone := "No"
		if a.Content.IsCornerstone {
			cornerstone = "Yes"
		}
		row := []string{
			strconv.Itoa(a.Rank),
			a.Metrics.PagePath,
			a.Content.PostTitle,
			w.postURL(a.Metrics.PagePath),
			fmt.Sprintf("%.2f", a.Score),
			strconv.Itoa(a.Metrics.Pageviews),
			strconv.Itoa(a.Metrics.Sessions),
			strconv.Itoa(a.Metrics.Clicks),
			strconv.Itoa(a.Metrics.Impressions),
			fmt.Sprintf("%.1f", a.Metrics.Position),
			fmt.Sprintf("%.4f", a.Metrics.CTR),
			fmt.Sprintf("%.1f", a.Metrics.AvgDuration),
			lastModified,
			strconv.Itoa(a.Content.DaysSinceUpdate),
			a.Content.FocusKeyword,
			strconv.Itoa(a.Content.KeywordScore),
			strconv.Itoa(a.Content.ReadabilityScore),
			cornerstone,
			joinSemicolon(alertsByPath[a.Metrics.PagePath]),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	w.logger.Info("csv report saved", "path", path)
	return nil
}

func (w *Writer) writeAttentionCSV(date time.Time, articles []domain.AttentionArticle) error {
	path := filepath.Join(w.cfg.Dir, fmt.Sprintf("attention_needed_%s.csv", date.Format("2006-01-02")))
	file, err := w.createReportFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"Priority Score", "Category", "Post ID", "Post Title", "Dev URL",
		"Pageviews", "Clicks", "Impressions", "CTR %",
		"Avg Position", "Days Since Update", "Focus Keyword",
		"Readability", "Issues", "Recommended Actions",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, a := range articles {
		keyword := a.Content.FocusKeyword
		if keyword == "" {
			keyword = "MISSING"
		}
		row := []string{
			fmt.Sprintf("%.0f", a.Score),
			string(a.Category()),
			strconv.Itoa(a.Content.PostID),
			a.Content.PostTitle,
			w.cfg.DevSiteURL + a.Metrics.PagePath,
			strconv.Itoa(a.Metrics.Pageviews),
			strconv.Itoa(a.Metrics.Clicks),
			strconv.Itoa(a.Metrics.Impressions),
			fmt.Sprintf("%.2f", a.Metrics.CTR*100),
			fmt.Sprintf("%.1f", a.Metrics.Position),
			strconv.Itoa(a.Content.DaysSinceUpdate),
			keyword,
			strconv.Itoa(a.Content.ReadabilityScore),
			joinSemicolon(a.Issues),
			joinPipe(a.Actions),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	w.logger.Info("csv report saved", "path", path)
	return nil
}

func (w *Writer) createReportFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return file, nil
}

// postURL builds the public article URL from the page path slug.
func (w *Writer) postURL(pagePath string) string {
	name := domain.PostName(pagePath)
	if name == "" {
		return w.cfg.SiteURL
	}
	return fmt.Sprintf("%s/%s/", w.cfg.SiteURL, name)
}

func joinSemicolon(items []string) string {
	return strings.Join(items, "; ")
}

func joinPipe(items []string) string {
	return strings.Join(items, " | ")
}
