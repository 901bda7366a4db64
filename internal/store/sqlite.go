package store

import (
	"database/sql"
	"fmt"

	"github.com/vandash/vandash/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReplaceSnapshot atomically swaps the dashboard snapshot for a freshly
// merged one. Records are constructed anew on every pipeline run; nothing
// outlives the next rebuild.
func (s *Store) ReplaceSnapshot(records []models.StateRecord, national []models.NationalRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM state_stats`); err != nil {
		return fmt.Errorf("clear state_stats: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM national_stats`); err != nil {
		return fmt.Errorf("clear national_stats: %w", err)
	}

	stateStmt, err := tx.Prepare(`
		INSERT INTO state_stats (state, year, geographical_area, forest_area, reserved, protected, unclassed, tree_cover, mangrove, rainfall)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stateStmt.Close()

	for _, r := range records {
		if _, err := stateStmt.Exec(r.State, r.Year, r.GeographicalArea, r.ForestArea,
			r.Reserved, r.Protected, r.Unclassed, r.TreeCover, r.Mangrove, r.Rainfall); err != nil {
			return fmt.Errorf("insert %s/%d: %w", r.State, r.Year, err)
		}
	}

	natStmt, err := tx.Prepare(`
		INSERT INTO national_stats (year, reporting_states, geographical_area, forest_area, tree_cover, mangrove, rainfall_avg)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer natStmt.Close()

	for _, n := range national {
		if _, err := natStmt.Exec(n.Year, n.ReportingStates, n.GeographicalArea,
			n.ForestArea, n.TreeCover, n.Mangrove, n.RainfallAvg); err != nil {
			return fmt.Errorf("insert national %d: %w", n.Year, err)
		}
	}

	return tx.Commit()
}

const stateColumns = `state, year, geographical_area, forest_area, reserved, protected, unclassed, tree_cover, mangrove, rainfall, created_at`

func scanStateRecord(rows *sql.Rows) (models.StateRecord, error) {
	var r models.StateRecord
	err := rows.Scan(&r.State, &r.Year, &r.GeographicalArea, &r.ForestArea,
		&r.Reserved, &r.Protected, &r.Unclassed, &r.TreeCover, &r.Mangrove, &r.Rainfall, &r.CreatedAt)
	return r, err
}

// GetStateRecords returns all state records for one year, ordered by state.
func (s *Store) GetStateRecords(year int) ([]models.StateRecord, error) {
	rows, err := s.db.Query(`SELECT `+stateColumns+` FROM state_stats WHERE year = ? ORDER BY state`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StateRecord
	for rows.Next() {
		r, err := scanStateRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetAllStateRecords returns the whole snapshot ordered by state then year.
func (s *Store) GetAllStateRecords() ([]models.StateRecord, error) {
	rows, err := s.db.Query(`SELECT ` + stateColumns + ` FROM state_stats ORDER BY state, year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StateRecord
	for rows.Next() {
		r, err := scanStateRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetStateRecord returns one (state, year) record, or nil when absent.
func (s *Store) GetStateRecord(state string, year int) (*models.StateRecord, error) {
	rows, err := s.db.Query(`SELECT `+stateColumns+` FROM state_stats WHERE state = ? AND year = ?`, state, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanStateRecord(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetStateSeries returns every year on record for one state.
func (s *Store) GetStateSeries(state string) ([]models.StateRecord, error) {
	rows, err := s.db.Query(`SELECT `+stateColumns+` FROM state_stats WHERE state = ? ORDER BY year`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StateRecord
	for rows.Next() {
		r, err := scanStateRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetYears returns the distinct years in the snapshot, ascending.
func (s *Store) GetYears() ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT year FROM state_stats ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// GetNationalRecords returns the per-year national aggregates, ascending.
func (s *Store) GetNationalRecords() ([]models.NationalRecord, error) {
	rows, err := s.db.Query(`
		SELECT year, reporting_states, geographical_area, forest_area, tree_cover, mangrove, rainfall_avg
		FROM national_stats ORDER BY year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.NationalRecord
	for rows.Next() {
		var n models.NationalRecord
		if err := rows.Scan(&n.Year, &n.ReportingStates, &n.GeographicalArea,
			&n.ForestArea, &n.TreeCover, &n.Mangrove, &n.RainfallAvg); err != nil {
			return nil, err
		}
		records = append(records, n)
	}
	return records, rows.Err()
}
