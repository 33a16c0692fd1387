package services

import (
	"fmt"
	"io"

	"github.com/alimgiray/gmash/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	languagesSheet = "Languages"
	topicsSheet    = "Topics"
)

// ExportService renders profile summaries as spreadsheets
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// SummaryRows flattens a summary into metric/value pairs using the JSON field paths
func (s *ExportService) SummaryRows(summary *models.ProfileSummary) [][]interface{} {
	return [][]interface{}{
		{"repo_count.original", summary.RepoCount.Original},
		{"repo_count.forked", summary.RepoCount.Forked},
		{"repo_watchers", summary.RepoWatchers},
		{"user_watchers", summary.UserWatchers},
		{"stars.received", summary.Stars.Received},
		{"stars.given", summary.Stars.Given},
		{"open_issues", summary.OpenIssues},
		{"commits", summary.Commits},
		{"account_size", summary.AccountSize},
		{"languages.count", summary.Languages.Count},
		{"repo_topics.count", summary.RepoTopics.Count},
	}
}

// WriteXLSX writes the summary as an XLSX workbook with one sheet for the
// counters and one each for languages and topics
func (s *ExportService) WriteXLSX(summary *models.ProfileSummary, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	rows := append([][]interface{}{{"metric", "value"}}, s.SummaryRows(summary)...)
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}

	if err := writeList(f, languagesSheet, "language", summary.Languages.List); err != nil {
		return err
	}
	if err := writeList(f, topicsSheet, "topic", summary.RepoTopics.List); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeList(f *excelize.File, sheet, header string, values []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := make([][]interface{}, 0, len(values)+1)
	rows = append(rows, []interface{}{header})
	for _, value := range values {
		rows = append(rows, []interface{}{value})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("invalid cell for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
