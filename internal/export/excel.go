package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
)

const (
	CandidatesSheet = "Candidates"
	FilterSheet     = "Filter"
)

var candidateHeaders = []string{"Rank", "Name", "Score", "Experience", "Email", "Phone", "Key Skills", "Status", "Justification"}

// RankLabel - словесная оценка балла: 8+ Excellent, 6+ Good, 4+ Average.
func RankLabel(score float64) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 6:
		return "Good"
	case score >= 4:
		return "Average"
	}
	return ""
}

// ScoreText - балл с меткой, например "8.5 (Excellent)".
func ScoreText(score float64) string {
	text := fmt.Sprintf("%g", score)
	if label := RankLabel(score); label != "" {
		text += " (" + label + ")"
	}
	return text
}

// WriteCandidates пишет xlsx с видимыми кандидатами и описанием фильтра.
func WriteCandidates(w io.Writer, candidates []entity.Candidate, criteria board.FilterCriteria) error {
	f, err := Build(candidates, criteria)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// Build собирает книгу в памяти. Закрыть её должен вызывающий.
func Build(candidates []entity.Candidate, criteria board.FilterCriteria) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", CandidatesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(FilterSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: create filter sheet: %w", err)
	}

	if err := writeCandidatesSheet(f, candidates); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: candidates sheet: %w", err)
	}
	if err := writeFilterSheet(f, criteria, len(candidates)); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: filter sheet: %w", err)
	}
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeCandidatesSheet(f *excelize.File, candidates []entity.Candidate) error {
	sheet := CandidatesSheet
	widths := map[string]float64{"A": 8, "B": 25, "C": 16, "D": 12, "E": 28, "F": 18, "G": 30, "H": 14, "I": 60}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for i, h := range candidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(candidateHeaders))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", hs); err != nil {
		return err
	}

	for i, c := range candidates {
		row := i + 2
		values := []interface{}{
			i + 1,
			c.Name,
			ScoreText(c.Score),
			c.Experience,
			c.Email,
			c.Phone,
			strings.Join(c.KeySkills, ", "),
			string(c.ShortlistStatus),
			c.Justification,
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("I%d", row), fmt.Sprintf("I%d", row), wrap); err != nil {
			return err
		}
	}

	if len(candidates) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(candidates)+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeFilterSheet(f *excelize.File, criteria board.FilterCriteria, shown int) error {
	sheet := FilterSheet
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	hs, err := headerStyle(f)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Filter"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", hs); err != nil {
		return err
	}

	row := 2
	for _, line := range criteria.Describe() {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line); err != nil {
			return err
		}
		row++
	}
	return f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Shown: %d", shown))
}
