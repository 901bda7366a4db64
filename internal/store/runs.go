package store

import (
	"database/sql"
	"time"
)

// ETLRun is one audit row per pipeline execution.
type ETLRun struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    sql.NullTime
	RowsParsed    sql.NullInt64
	RowsStored    sql.NullInt64
	RowsSkipped   sql.NullInt64
	UnmatchedKeys sql.NullInt64
	Success       bool
	ErrorMessage  sql.NullString
}

// StartRun creates a new ETL run record and returns it.
func (s *Store) StartRun() (*ETLRun, error) {
	run := &ETLRun{StartedAt: time.Now().UTC()}

	result, err := s.db.Exec(`
		INSERT INTO etl_runs (started_at, success) VALUES (?, FALSE)
	`, run.StartedAt)
	if err != nil {
		return nil, err
	}
	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteRun updates the ETL run with its results.
func (s *Store) CompleteRun(run *ETLRun) error {
	if run == nil {
		return nil
	}
	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE etl_runs SET
			finished_at = ?,
			rows_parsed = ?,
			rows_stored = ?,
			rows_skipped = ?,
			unmatched_keys = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.RowsParsed, run.RowsStored, run.RowsSkipped,
		run.UnmatchedKeys, run.Success, run.ErrorMessage, run.ID)
	return err
}

// GetLastRun returns the most recent ETL run, or nil when none exists.
func (s *Store) GetLastRun() (*ETLRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, rows_parsed, rows_stored, rows_skipped, unmatched_keys, success, error_message
		FROM etl_runs ORDER BY started_at DESC LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var r ETLRun
	if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.RowsParsed,
		&r.RowsStored, &r.RowsSkipped, &r.UnmatchedKeys, &r.Success, &r.ErrorMessage); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecentFailedRuns returns recent failed pipeline executions.
func (s *Store) GetRecentFailedRuns(limit int) ([]ETLRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, rows_parsed, rows_stored, rows_skipped, unmatched_keys, success, error_message
		FROM etl_runs WHERE success = FALSE ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ETLRun
	for rows.Next() {
		var r ETLRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.RowsParsed,
			&r.RowsStored, &r.RowsSkipped, &r.UnmatchedKeys, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
