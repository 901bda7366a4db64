package dataset

import (
	"database/sql"
	"fmt"

	"github.com/vandash/vandash/internal/metrics"
	"github.com/vandash/vandash/internal/models"
)

// Source names used in issue reports, metrics and the audit table.
const (
	SourceForestArea = "forest_area"
	SourceTreeCover  = "tree_cover"
	SourceMangrove   = "mangrove"
	SourceRainfall   = "rainfall"
)

// ParseForestArea cleans the recorded forest area table. Total is the
// primary value: rows where it cannot be coerced are skipped. The legal
// breakdown, geographical area and the SFR 2005 baseline are optional.
func ParseForestArea(t *Table) ([]models.ForestAreaRow, []RowIssue, error) {
	stateCol, err := t.Require("state uts", "state", "states")
	if err != nil {
		return nil, nil, err
	}
	totalCol, err := t.Require("recorded forest area total", "total forest area", "total")
	if err != nil {
		return nil, nil, err
	}
	geoCol, hasGeo := t.Column("geographical area")
	resCol, hasRes := t.Column("recorded forest area reserved forests", "reserved forests")
	proCol, hasPro := t.Column("recorded forest area protected forests", "protected forests")
	uncCol, hasUnc := t.Column("recorded forest area unclassed forests", "unclassed forests")
	baseCol, hasBase := t.Column("recorded forest area as in sfr 2005", "as in sfr 2005")

	var (
		rows   []models.ForestAreaRow
		issues []RowIssue
		seen   = map[string]bool{}
	)
	for n, raw := range t.Rows {
		line := n + 1
		state, issue := cleanKey(SourceForestArea, line, t.Field(raw, stateCol))
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}

		total, err := ParseNumber(t.Field(raw, totalCol))
		if err != nil {
			issues = append(issues, RowIssue{Source: SourceForestArea, Line: line, State: state, Flag: FlagBadNumber, Detail: err.Error()})
			continue
		}
		if total < 0 {
			issues = append(issues, RowIssue{Source: SourceForestArea, Line: line, State: state, Flag: FlagNegativeArea, Detail: fmt.Sprintf("total=%v", total)})
			continue
		}
		if seen[state] {
			issues = append(issues, RowIssue{Source: SourceForestArea, Line: line, State: state, Flag: FlagDuplicateKey})
			continue
		}
		seen[state] = true

		row := models.ForestAreaRow{State: state, Total: total}
		if hasGeo {
			row.GeographicalArea = optional(t.Field(raw, geoCol))
		}
		if hasRes {
			row.Reserved = optional(t.Field(raw, resCol))
		}
		if hasPro {
			row.Protected = optional(t.Field(raw, proCol))
		}
		if hasUnc {
			row.Unclassed = optional(t.Field(raw, uncCol))
		}
		if hasBase {
			row.Baseline2005 = optional(t.Field(raw, baseCol))
		}
		rows = append(rows, row)
	}
	countIssues(SourceForestArea, len(t.Rows), issues)
	return rows, issues, nil
}

// ParseTreeCover cleans the statewise tree cover table.
func ParseTreeCover(t *Table) ([]models.TreeCoverRow, []RowIssue, error) {
	stateCol, err := t.Require("state uts", "state", "states")
	if err != nil {
		return nil, nil, err
	}
	areaCol, err := t.Require("tree cover area", "tree cover", "area")
	if err != nil {
		return nil, nil, err
	}

	var (
		rows   []models.TreeCoverRow
		issues []RowIssue
	)
	for n, raw := range t.Rows {
		line := n + 1
		state, issue := cleanKey(SourceTreeCover, line, t.Field(raw, stateCol))
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		area, err := ParseNumber(t.Field(raw, areaCol))
		if err != nil {
			issues = append(issues, RowIssue{Source: SourceTreeCover, Line: line, State: state, Flag: FlagBadNumber, Detail: err.Error()})
			continue
		}
		rows = append(rows, models.TreeCoverRow{State: state, TreeCover: area})
	}
	countIssues(SourceTreeCover, len(t.Rows), issues)
	return rows, issues, nil
}

// ParseMangrove cleans the mangrove cover time series (one row per state
// and year since 1987).
func ParseMangrove(t *Table) ([]models.MangroveRow, []RowIssue, error) {
	stateCol, err := t.Require("state", "state uts", "states")
	if err != nil {
		return nil, nil, err
	}
	yearCol, err := t.Require("year")
	if err != nil {
		return nil, nil, err
	}
	valueCol, err := t.Require("value", "mangrove cover", "area")
	if err != nil {
		return nil, nil, err
	}

	var (
		rows   []models.MangroveRow
		issues []RowIssue
	)
	for n, raw := range t.Rows {
		line := n + 1
		state, issue := cleanKey(SourceMangrove, line, t.Field(raw, stateCol))
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		year, err := ParseNumber(t.Field(raw, yearCol))
		if err != nil {
			issues = append(issues, RowIssue{Source: SourceMangrove, Line: line, State: state, Flag: FlagBadNumber, Detail: "year: " + err.Error()})
			continue
		}
		value, err := ParseNumber(t.Field(raw, valueCol))
		if err != nil {
			issues = append(issues, RowIssue{Source: SourceMangrove, Line: line, State: state, Flag: FlagBadNumber, Detail: err.Error()})
			continue
		}
		rows = append(rows, models.MangroveRow{State: state, Year: int(year), Area: value})
	}
	countIssues(SourceMangrove, len(t.Rows), issues)
	return rows, issues, nil
}

// ParseRainfall cleans the statewise annual rainfall table.
func ParseRainfall(t *Table) ([]models.RainfallRow, []RowIssue, error) {
	stateCol, err := t.Require("states", "state uts", "state")
	if err != nil {
		return nil, nil, err
	}
	mmCol, err := t.Require("precipitation mm", "rainfall mm", "annual rainfall")
	if err != nil {
		return nil, nil, err
	}

	var (
		rows   []models.RainfallRow
		issues []RowIssue
	)
	for n, raw := range t.Rows {
		line := n + 1
		state, issue := cleanKey(SourceRainfall, line, t.Field(raw, stateCol))
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		mm, err := ParseNumber(t.Field(raw, mmCol))
		if err != nil {
			issues = append(issues, RowIssue{Source: SourceRainfall, Line: line, State: state, Flag: FlagBadNumber, Detail: err.Error()})
			continue
		}
		rows = append(rows, models.RainfallRow{State: state, Rainfall: mm})
	}
	countIssues(SourceRainfall, len(t.Rows), issues)
	return rows, issues, nil
}

// cleanKey normalizes a state cell and rejects empty and aggregate labels.
func cleanKey(source string, line int, raw string) (string, *RowIssue) {
	if IsAggregate(raw) {
		return "", &RowIssue{Source: source, Line: line, State: raw, Flag: FlagAggregateRow}
	}
	state := CleanStateName(raw)
	if state == "" {
		return "", &RowIssue{Source: source, Line: line, Flag: FlagMissingState}
	}
	return state, nil
}

// optional applies the zero-fill policy to a secondary numeric cell:
// missing or malformed cells become NULL and surface as 0 at presentation.
func optional(s string) sql.NullFloat64 {
	v, err := ParseNumber(s)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func countIssues(source string, total int, issues []RowIssue) {
	metrics.RowsParsed.WithLabelValues(source).Add(float64(total - len(issues)))
	for _, i := range issues {
		metrics.RowsSkipped.WithLabelValues(source, i.Flag).Inc()
	}
}
