package models

import (
	"database/sql"
	"time"
)

// StateRecord is one row of the merged master table, keyed by (State, Year).
// ForestArea is the recorded forest area total and is always present; the
// remaining measures come from secondary sources and may be absent for a
// given state or year.
type StateRecord struct {
	State            string
	Year             int
	GeographicalArea sql.NullFloat64
	ForestArea       float64
	Reserved         sql.NullFloat64
	Protected        sql.NullFloat64
	Unclassed        sql.NullFloat64
	TreeCover        sql.NullFloat64
	Mangrove         sql.NullFloat64
	Rainfall         sql.NullFloat64
	CreatedAt        time.Time
}

// Breakdown returns the legal-status composition of the recorded forest
// area. Absent categories are zero-filled.
func (r StateRecord) Breakdown() map[string]float64 {
	return map[string]float64{
		"Reserved":  r.Reserved.Float64,
		"Protected": r.Protected.Float64,
		"Unclassed": r.Unclassed.Float64,
	}
}

// NationalRecord aggregates all reporting states for one year.
type NationalRecord struct {
	Year             int
	ReportingStates  int
	GeographicalArea float64
	ForestArea       float64
	TreeCover        float64
	Mangrove         float64
	RainfallAvg      sql.NullFloat64
}

// RankingEntry is a per-state year-over-year delta for one metric.
// Entries are derived on demand and never persisted.
type RankingEntry struct {
	State     string
	FromValue float64
	ToValue   float64
	Delta     float64
	Rank      int
}

// ForestAreaRow is a cleaned row from the recorded forest area source.
// Baseline2005 carries the "as in SFR 2005" column when present.
type ForestAreaRow struct {
	State            string
	GeographicalArea sql.NullFloat64
	Reserved         sql.NullFloat64
	Protected        sql.NullFloat64
	Unclassed        sql.NullFloat64
	Total            float64
	Baseline2005     sql.NullFloat64
}

// TreeCoverRow is a cleaned row from the statewise tree cover source.
type TreeCoverRow struct {
	State     string
	TreeCover float64
}

// MangroveRow is one point of the mangrove cover time series (since 1987).
type MangroveRow struct {
	State string
	Year  int
	Area  float64
}

// RainfallRow is a cleaned row from the statewise rainfall source.
type RainfallRow struct {
	State    string
	Rainfall float64
}
