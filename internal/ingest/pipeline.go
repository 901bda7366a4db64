package ingest

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/vandash/vandash/internal/dataset"
	"github.com/vandash/vandash/internal/metrics"
	"github.com/vandash/vandash/internal/models"
	"github.com/vandash/vandash/internal/store"
)

// Sources names the four CSV files a pipeline run reads. A missing file
// aborts the run.
type Sources struct {
	ForestArea string
	TreeCover  string
	Mangrove   string
	Rainfall   string
}

// Pipeline runs the batch ETL: load -> clean -> merge -> store. One run per
// dashboard refresh, single-threaded, no partial snapshots.
type Pipeline struct {
	store        *store.Store
	sources      Sources
	year         int
	baselineYear int
}

// Result summarizes a completed run.
type Result struct {
	Records  []models.StateRecord
	National []models.NationalRecord
	Report   *dataset.MergeReport
	Issues   []dataset.RowIssue
}

func NewPipeline(st *store.Store, sources Sources, year, baselineYear int) *Pipeline {
	return &Pipeline{
		store:        st,
		sources:      sources,
		year:         year,
		baselineYear: baselineYear,
	}
}

// Run executes the pipeline and rebuilds the snapshot. Per-row issues are
// logged and counted; missing files, schema mismatches and an empty merge
// are fatal.
func (p *Pipeline) Run() (*Result, error) {
	run, err := p.store.StartRun()
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	result, err := p.run()
	if err != nil {
		run.Success = false
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		if cerr := p.store.CompleteRun(run); cerr != nil {
			log.Printf("pipeline: complete run: %v", cerr)
		}
		return nil, err
	}

	unmatched := len(result.Report.UnmatchedTreeCover) +
		len(result.Report.UnmatchedRainfall) +
		len(result.Report.UnmatchedMangrove)

	run.RowsParsed = sql.NullInt64{Int64: int64(len(result.Records) + len(result.Issues)), Valid: true}
	run.RowsStored = sql.NullInt64{Int64: int64(len(result.Records)), Valid: true}
	run.RowsSkipped = sql.NullInt64{Int64: int64(len(result.Issues)), Valid: true}
	run.UnmatchedKeys = sql.NullInt64{Int64: int64(unmatched), Valid: true}
	run.Success = true
	if err := p.store.CompleteRun(run); err != nil {
		log.Printf("pipeline: complete run: %v", err)
	}

	metrics.SnapshotRebuilds.Inc()
	log.Printf("pipeline: snapshot rebuilt: %d records, %d rows skipped, %d unmatched join keys",
		len(result.Records), len(result.Issues), unmatched)
	return result, nil
}

func (p *Pipeline) run() (*Result, error) {
	forestTbl, err := dataset.Load(p.sources.ForestArea)
	if err != nil {
		return nil, fmt.Errorf("forest area source: %w", err)
	}
	treeTbl, err := dataset.Load(p.sources.TreeCover)
	if err != nil {
		return nil, fmt.Errorf("tree cover source: %w", err)
	}
	mangroveTbl, err := dataset.Load(p.sources.Mangrove)
	if err != nil {
		return nil, fmt.Errorf("mangrove source: %w", err)
	}
	rainTbl, err := dataset.Load(p.sources.Rainfall)
	if err != nil {
		return nil, fmt.Errorf("rainfall source: %w", err)
	}

	var issues []dataset.RowIssue

	forest, is, err := dataset.ParseForestArea(forestTbl)
	if err != nil {
		return nil, err
	}
	issues = append(issues, is...)

	tree, is, err := dataset.ParseTreeCover(treeTbl)
	if err != nil {
		return nil, err
	}
	issues = append(issues, is...)

	mangrove, is, err := dataset.ParseMangrove(mangroveTbl)
	if err != nil {
		return nil, err
	}
	issues = append(issues, is...)

	rain, is, err := dataset.ParseRainfall(rainTbl)
	if err != nil {
		return nil, err
	}
	issues = append(issues, is...)

	for _, issue := range issues {
		log.Printf("pipeline: skipped %s", issue)
	}

	records, report, err := dataset.Merge(dataset.MergeInput{
		Forest:       forest,
		TreeCover:    tree,
		Mangrove:     mangrove,
		Rainfall:     rain,
		Year:         p.year,
		BaselineYear: p.baselineYear,
	})
	if err != nil {
		return nil, err
	}

	if !report.Empty() {
		log.Printf("pipeline: unmatched join keys: tree_cover=%v rainfall=%v mangrove=%v",
			report.UnmatchedTreeCover, report.UnmatchedRainfall, report.UnmatchedMangrove)
	}
	if report.SkippedMangroveRows > 0 {
		log.Printf("pipeline: %d mangrove rows fall outside the loaded editions", report.SkippedMangroveRows)
	}

	national := dataset.Aggregate(records)

	if err := p.store.ReplaceSnapshot(records, national); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	return &Result{
		Records:  records,
		National: national,
		Report:   report,
		Issues:   issues,
	}, nil
}
