package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
)

const (
	ClausesSheet = "Risk Clauses"
	SummarySheet = "Summary"

	// Excel refuses cells longer than this.
	maxCellChars = 32767
)

// Service produces XLSX bytes for a risk report.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, now: time.Now}
}

// ReportXLSX returns a workbook with one row per clause, in reply order, and a
// summary sheet with per-level counts and the action advice.
func (s *Service) ReportXLSX(res entity.AnalysisResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, sheet := range []string{ClausesSheet, SummarySheet} {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(ClausesSheet)
	f.SetActiveSheet(activeIndex)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	headers := []string{"#", "Risk Level", "Original Text", "Reason", "Suggestion"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ClausesSheet, cell, h)
	}
	_ = f.SetCellStyle(ClausesSheet, "A1", "E1", headerStyle)

	row := 2
	for i, c := range res.RiskClauses {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(ClausesSheet, cell, v)
		}
		write(1, i+1)
		write(2, c.RiskLevel.Label())
		write(3, truncate(c.OriginalText, maxCellChars))
		write(4, truncate(c.RiskReason, maxCellChars))
		write(5, truncate(c.Suggestion, maxCellChars))
		row++
	}

	_ = f.SetColWidth(ClausesSheet, "A", "A", 5)
	_ = f.SetColWidth(ClausesSheet, "B", "B", 12)
	_ = f.SetColWidth(ClausesSheet, "C", "C", 60)
	_ = f.SetColWidth(ClausesSheet, "D", "E", 48)

	counts := res.CountByLevel()
	summary := [][]any{
		{"Generated At", s.now().UTC().Format(time.RFC3339)},
		{"Total Clauses", len(res.RiskClauses)},
	}
	for _, lvl := range constants.RiskLevels() {
		summary = append(summary, []any{lvl.Label(), counts[lvl]})
	}
	summary = append(summary, []any{"Action Advice", truncate(res.ActionAdvice, maxCellChars)})
	for r, vals := range summary {
		for c, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(SummarySheet, cell, v)
		}
	}
	_ = f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle)
	_ = f.SetColWidth(SummarySheet, "A", "A", 16)
	_ = f.SetColWidth(SummarySheet, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(res.RiskClauses),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteReport writes the workbook to path.
func (s *Service) WriteReport(path string, res entity.AnalysisResult) error {
	b, err := s.ReportXLSX(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("export.xlsx.written", "path", path)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
