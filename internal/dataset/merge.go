package dataset

import (
	"database/sql"
	"errors"
	"sort"
	"strconv"

	"github.com/vandash/vandash/internal/metrics"
	"github.com/vandash/vandash/internal/models"
)

// ErrEmptyMerge is returned when the merge produces no records at all,
// which aborts the run.
var ErrEmptyMerge = errors.New("merge produced no records")

// MergeInput carries the cleaned source tables and the two editions the
// forest-area source spans: the current ISFR year and the SFR 2005
// baseline column.
type MergeInput struct {
	Forest       []models.ForestAreaRow
	TreeCover    []models.TreeCoverRow
	Mangrove     []models.MangroveRow
	Rainfall     []models.RainfallRow
	Year         int // current ISFR edition, e.g. 2023
	BaselineYear int // SFR baseline edition, e.g. 2005
}

// MergeReport lists join keys that were present in a secondary source but
// had no matching state in the base table. Unmatched keys are reported,
// never silently discarded. SkippedMangroveRows counts mangrove rows whose
// state matched but whose year is not a loaded edition; the series goes
// back to 1987 and most of it falls outside the two editions on record.
type MergeReport struct {
	UnmatchedTreeCover  []string
	UnmatchedRainfall   []string
	UnmatchedMangrove   []string
	SkippedMangroveRows int
}

// Empty reports whether every secondary source joined cleanly.
func (r *MergeReport) Empty() bool {
	return len(r.UnmatchedTreeCover) == 0 && len(r.UnmatchedRainfall) == 0 && len(r.UnmatchedMangrove) == 0
}

// Merge left-joins the secondary sources onto the forest-area base by
// normalized state name. The base contributes one record per state for the
// current year, plus one for the baseline year when the SFR 2005 column is
// present. Tree cover and rainfall are single-edition tables and join onto
// the current year; the mangrove series joins per (state, year).
//
// The (state, year) key is unique in the output: duplicate base rows are
// rejected upstream by ParseForestArea.
func Merge(in MergeInput) ([]models.StateRecord, *MergeReport, error) {
	byKey := make(map[string]*models.StateRecord)
	key := func(state string, year int) string { return state + "\x00" + strconv.Itoa(year) }

	var records []models.StateRecord
	for _, f := range in.Forest {
		records = append(records, models.StateRecord{
			State:            f.State,
			Year:             in.Year,
			GeographicalArea: f.GeographicalArea,
			ForestArea:       f.Total,
			Reserved:         f.Reserved,
			Protected:        f.Protected,
			Unclassed:        f.Unclassed,
		})
		if f.Baseline2005.Valid {
			records = append(records, models.StateRecord{
				State:      f.State,
				Year:       in.BaselineYear,
				ForestArea: f.Baseline2005.Float64,
			})
		}
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyMerge
	}
	for i := range records {
		byKey[key(records[i].State, records[i].Year)] = &records[i]
	}

	report := &MergeReport{}

	for _, tc := range in.TreeCover {
		if rec, ok := byKey[key(tc.State, in.Year)]; ok {
			rec.TreeCover = sql.NullFloat64{Float64: tc.TreeCover, Valid: true}
		} else {
			report.UnmatchedTreeCover = append(report.UnmatchedTreeCover, tc.State)
			metrics.MergeUnmatched.WithLabelValues(SourceTreeCover).Inc()
		}
	}

	for _, rf := range in.Rainfall {
		if rec, ok := byKey[key(rf.State, in.Year)]; ok {
			rec.Rainfall = sql.NullFloat64{Float64: rf.Rainfall, Valid: true}
		} else {
			report.UnmatchedRainfall = append(report.UnmatchedRainfall, rf.State)
			metrics.MergeUnmatched.WithLabelValues(SourceRainfall).Inc()
		}
	}

	// The mangrove series spans many years; only editions present in the
	// base can be joined. States never seen in the base are reported once,
	// rows for other years are counted.
	mangroveStates := make(map[string]bool)
	unmatchedMangrove := make(map[string]bool)
	for i := range records {
		mangroveStates[records[i].State] = true
	}
	for _, m := range in.Mangrove {
		if !mangroveStates[m.State] {
			unmatchedMangrove[m.State] = true
			continue
		}
		if rec, ok := byKey[key(m.State, m.Year)]; ok {
			rec.Mangrove = sql.NullFloat64{Float64: m.Area, Valid: true}
		} else {
			report.SkippedMangroveRows++
		}
	}
	for state := range unmatchedMangrove {
		report.UnmatchedMangrove = append(report.UnmatchedMangrove, state)
		metrics.MergeUnmatched.WithLabelValues(SourceMangrove).Inc()
	}

	sort.Strings(report.UnmatchedTreeCover)
	sort.Strings(report.UnmatchedRainfall)
	sort.Strings(report.UnmatchedMangrove)

	sort.Slice(records, func(i, j int) bool {
		if records[i].State != records[j].State {
			return records[i].State < records[j].State
		}
		return records[i].Year < records[j].Year
	})
	return records, report, nil
}

// Aggregate rolls the merged records up into one national record per year.
// Rainfall is averaged over the states that report it; areas are summed.
func Aggregate(records []models.StateRecord) []models.NationalRecord {
	byYear := make(map[int]*models.NationalRecord)
	rainfall := make(map[int][]float64)

	for _, r := range records {
		n, ok := byYear[r.Year]
		if !ok {
			n = &models.NationalRecord{Year: r.Year}
			byYear[r.Year] = n
		}
		n.ReportingStates++
		n.ForestArea += r.ForestArea
		if r.GeographicalArea.Valid {
			n.GeographicalArea += r.GeographicalArea.Float64
		}
		if r.TreeCover.Valid {
			n.TreeCover += r.TreeCover.Float64
		}
		if r.Mangrove.Valid {
			n.Mangrove += r.Mangrove.Float64
		}
		if r.Rainfall.Valid {
			rainfall[r.Year] = append(rainfall[r.Year], r.Rainfall.Float64)
		}
	}

	var out []models.NationalRecord
	for year, n := range byYear {
		if mm := rainfall[year]; len(mm) > 0 {
			sum := 0.0
			for _, v := range mm {
				sum += v
			}
			n.RainfallAvg = sql.NullFloat64{Float64: sum / float64(len(mm)), Valid: true}
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
