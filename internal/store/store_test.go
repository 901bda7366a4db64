package store

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vandash/vandash/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func sampleSnapshot() ([]models.StateRecord, []models.NationalRecord) {
	records := []models.StateRecord{
		{State: "Kerala", Year: 2005, ForestArea: 11268},
		{State: "Kerala", Year: 2023, ForestArea: 11527, GeographicalArea: nf(38852), TreeCover: nf(2892), Rainfall: nf(3055)},
		{State: "West Bengal", Year: 2023, ForestArea: 11879, Mangrove: nf(2119.36)},
	}
	national := []models.NationalRecord{
		{Year: 2005, ReportingStates: 1, ForestArea: 11268},
		{Year: 2023, ReportingStates: 2, ForestArea: 23406, TreeCover: 2892, Mangrove: 2119.36, RainfallAvg: nf(3055)},
	}
	return records, national
}

func TestReplaceSnapshotAndQueries(t *testing.T) {
	store := setupTestStore(t)
	records, national := sampleSnapshot()

	if err := store.ReplaceSnapshot(records, national); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	got, err := store.GetStateRecords(2023)
	if err != nil {
		t.Fatalf("GetStateRecords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].State != "Kerala" || got[1].State != "West Bengal" {
		t.Errorf("order = %s, %s; want Kerala, West Bengal", got[0].State, got[1].State)
	}
	if !got[0].TreeCover.Valid || got[0].TreeCover.Float64 != 2892 {
		t.Errorf("Kerala TreeCover = %+v, want 2892", got[0].TreeCover)
	}
	if got[1].Rainfall.Valid {
		t.Error("West Bengal rainfall should be NULL")
	}

	series, err := store.GetStateSeries("Kerala")
	if err != nil {
		t.Fatalf("GetStateSeries: %v", err)
	}
	if len(series) != 2 || series[0].Year != 2005 || series[1].Year != 2023 {
		t.Fatalf("series = %+v, want 2005 then 2023", series)
	}

	years, err := store.GetYears()
	if err != nil {
		t.Fatalf("GetYears: %v", err)
	}
	if len(years) != 2 || years[0] != 2005 || years[1] != 2023 {
		t.Fatalf("years = %v, want [2005 2023]", years)
	}

	one, err := store.GetStateRecord("West Bengal", 2023)
	if err != nil {
		t.Fatalf("GetStateRecord: %v", err)
	}
	if one == nil || one.Mangrove.Float64 != 2119.36 {
		t.Fatalf("record = %+v, want West Bengal mangrove 2119.36", one)
	}

	missing, err := store.GetStateRecord("Atlantis", 2023)
	if err != nil {
		t.Fatalf("GetStateRecord missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("record = %+v, want nil for unknown state", missing)
	}
}

func TestReplaceSnapshot_Rebuild(t *testing.T) {
	store := setupTestStore(t)
	records, national := sampleSnapshot()
	if err := store.ReplaceSnapshot(records, national); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	// A rebuild replaces everything; old rows must not survive.
	fresh := []models.StateRecord{{State: "Goa", Year: 2023, ForestArea: 1224}}
	freshNat := []models.NationalRecord{{Year: 2023, ReportingStates: 1, ForestArea: 1224}}
	if err := store.ReplaceSnapshot(fresh, freshNat); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	all, err := store.GetAllStateRecords()
	if err != nil {
		t.Fatalf("GetAllStateRecords: %v", err)
	}
	if len(all) != 1 || all[0].State != "Goa" {
		t.Fatalf("records = %+v, want only Goa", all)
	}

	nat, err := store.GetNationalRecords()
	if err != nil {
		t.Fatalf("GetNationalRecords: %v", err)
	}
	if len(nat) != 1 || nat[0].ForestArea != 1224 {
		t.Fatalf("national = %+v, want single 1224 row", nat)
	}
}

func TestNationalRecords(t *testing.T) {
	store := setupTestStore(t)
	records, national := sampleSnapshot()
	if err := store.ReplaceSnapshot(records, national); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	nat, err := store.GetNationalRecords()
	if err != nil {
		t.Fatalf("GetNationalRecords: %v", err)
	}
	if len(nat) != 2 {
		t.Fatalf("len = %d, want 2", len(nat))
	}
	if nat[1].ReportingStates != 2 || nat[1].ForestArea != 23406 {
		t.Errorf("2023 = %+v", nat[1])
	}
	if !nat[1].RainfallAvg.Valid || nat[1].RainfallAvg.Float64 != 3055 {
		t.Errorf("RainfallAvg = %+v, want 3055", nat[1].RainfallAvg)
	}
}

func TestETLRuns(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.StartRun()
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("run ID not assigned")
	}

	run.RowsParsed = sql.NullInt64{Int64: 40, Valid: true}
	run.RowsStored = sql.NullInt64{Int64: 38, Valid: true}
	run.RowsSkipped = sql.NullInt64{Int64: 2, Valid: true}
	run.UnmatchedKeys = sql.NullInt64{Int64: 1, Valid: true}
	run.Success = true
	if err := store.CompleteRun(run); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}

	last, err := store.GetLastRun()
	if err != nil {
		t.Fatalf("GetLastRun: %v", err)
	}
	if last == nil || !last.Success {
		t.Fatalf("last = %+v, want successful run", last)
	}
	if last.RowsStored.Int64 != 38 {
		t.Errorf("RowsStored = %d, want 38", last.RowsStored.Int64)
	}

	failed, err := store.GetRecentFailedRuns(10)
	if err != nil {
		t.Fatalf("GetRecentFailedRuns: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("failed = %+v, want none", failed)
	}
}
