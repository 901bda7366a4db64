package export

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vandash/vandash/internal/models"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.xlsx")

	wb := Workbook{
		Records: []models.StateRecord{
			{State: "Kerala", Year: 2023, ForestArea: 11527, TreeCover: nf(2892), Rainfall: nf(3055)},
			{State: "West Bengal", Year: 2023, ForestArea: 11879, Mangrove: nf(2119.36)},
		},
		National: []models.NationalRecord{
			{Year: 2005, ReportingStates: 2, ForestArea: 23147},
			{Year: 2023, ReportingStates: 2, ForestArea: 23406},
		},
		Rankings: []models.RankingEntry{
			{State: "Kerala", FromValue: 11268, ToValue: 11527, Delta: 259, Rank: 1},
		},
		Metric:   "forest_area",
		FromYear: 2005,
		ToYear:   2023,
	}

	if err := Write(path, wb); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Master Table", "National Trend", "Leaderboard"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}

	state, err := f.GetCellValue("Master Table", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if state != "Kerala" {
		t.Errorf("A2 = %q, want Kerala", state)
	}

	// NULL mangrove for Kerala stays blank, not zero.
	mangrove, err := f.GetCellValue("Master Table", "I2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if mangrove != "" {
		t.Errorf("I2 = %q, want empty for NULL measure", mangrove)
	}

	rank, err := f.GetCellValue("Leaderboard", "A3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if rank != "1" {
		t.Errorf("Leaderboard A3 = %q, want 1", rank)
	}
}
