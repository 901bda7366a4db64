// Package export writes the merged snapshot to an XLSX workbook for
// offline analysis.
package export

import (
	"database/sql"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vandash/vandash/internal/models"
)

// Workbook carries everything one export writes.
type Workbook struct {
	Records  []models.StateRecord
	National []models.NationalRecord
	Rankings []models.RankingEntry
	Metric   string
	FromYear int
	ToYear   int
}

// Write produces the workbook at path with three sheets: the master state
// table, the national trend and the current leaderboard.
func Write(path string, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeMaster(f, wb.Records); err != nil {
		return err
	}
	if err := writeNational(f, wb.National); err != nil {
		return err
	}
	if err := writeRankings(f, wb); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeMaster(f *excelize.File, records []models.StateRecord) error {
	const sheet = "Master Table"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{"State", "Year", "Geographical Area (sq km)", "Forest Area (sq km)",
		"Reserved", "Protected", "Unclassed", "Tree Cover (sq km)", "Mangrove (sq km)", "Rainfall (mm)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, r := range records {
		values := []any{r.State, r.Year,
			nullable(r.GeographicalArea), r.ForestArea,
			nullable(r.Reserved), nullable(r.Protected), nullable(r.Unclassed),
			nullable(r.TreeCover), nullable(r.Mangrove), nullable(r.Rainfall)}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeNational(f *excelize.File, national []models.NationalRecord) error {
	const sheet = "National Trend"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{"Year", "Reporting States", "Forest Area (sq km)", "Tree Cover (sq km)",
		"Mangrove (sq km)", "Avg Rainfall (mm)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, n := range national {
		values := []any{n.Year, n.ReportingStates, n.ForestArea, n.TreeCover, n.Mangrove, nullable(n.RainfallAvg)}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRankings(f *excelize.File, wb Workbook) error {
	const sheet = "Leaderboard"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	title := fmt.Sprintf("Change in %s, %d to %d", wb.Metric, wb.FromYear, wb.ToYear)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}

	headers := []string{"Rank", "State", fmt.Sprint(wb.FromYear), fmt.Sprint(wb.ToYear), "Delta"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, e := range wb.Rankings {
		values := []any{e.Rank, e.State, e.FromValue, e.ToValue, e.Delta}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// nullable converts a NULL measure to a blank cell rather than a spurious
// zero.
func nullable(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
