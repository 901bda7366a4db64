package api

import (
	"log"
	"sort"
	"time"

	"github.com/vandash/vandash/internal/models"
	"github.com/vandash/vandash/internal/rank"
)

const leaderboardSize = 5

func (s *Server) getSummaryData() (*SummaryData, error) {
	national, err := s.store.GetNationalRecords()
	if err != nil {
		return nil, err
	}

	data := &SummaryData{
		Year:         s.cfg.Year,
		BaselineYear: s.cfg.BaselineYear,
		LastUpdated:  time.Now(),
	}

	for i := range national {
		switch national[i].Year {
		case s.cfg.Year:
			data.National = &national[i]
		case s.cfg.BaselineYear:
			data.Baseline = &national[i]
		}
	}
	if data.National != nil && data.Baseline != nil && data.Baseline.ForestArea > 0 {
		data.PctChange = (data.National.ForestArea - data.Baseline.ForestArea) / data.Baseline.ForestArea * 100
	}

	data.States, err = s.store.GetStateRecords(s.cfg.Year)
	if err != nil {
		return nil, err
	}

	gainers, losers, err := s.leaderboards(rank.MetricForestArea, leaderboardSize)
	if err != nil {
		// A single-year snapshot has no deltas; the page renders without
		// the leaderboard.
		log.Printf("api: leaderboard unavailable: %v", err)
	} else {
		data.TopGainers = gainers
		data.TopLosers = losers
	}

	if run, err := s.store.GetLastRun(); err == nil {
		data.LastRun = run
	}
	if failures, err := s.store.GetRecentFailedRuns(3); err == nil {
		data.RecentFailures = failures
	}

	return data, nil
}

func (s *Server) leaderboards(metric rank.Metric, n int) ([]models.RankingEntry, []models.RankingEntry, error) {
	records, err := s.store.GetAllStateRecords()
	if err != nil {
		return nil, nil, err
	}
	entries, err := rank.Deltas(records, metric, s.cfg.BaselineYear, s.cfg.Year)
	if err != nil {
		return nil, nil, err
	}
	return rank.Top(entries, n), rank.Bottom(entries, n), nil
}

func (s *Server) getDeepDiveData() (*DeepDiveData, error) {
	records, err := s.store.GetStateRecords(s.cfg.Year)
	if err != nil {
		return nil, err
	}

	data := &DeepDiveData{
		Year:     s.cfg.Year,
		FromYear: s.cfg.BaselineYear,
		ToYear:   s.cfg.Year,
	}

	data.TopStates = topByForestArea(records, 10)

	gainers, losers, err := s.leaderboards(rank.MetricForestArea, leaderboardSize)
	if err != nil {
		log.Printf("api: leaderboard unavailable: %v", err)
	} else {
		data.Gainers = gainers
		data.Losers = losers
	}
	return data, nil
}

// topByForestArea returns the n largest states by recorded forest area,
// with name order as the tie-break.
func topByForestArea(records []models.StateRecord, n int) []models.StateRecord {
	sorted := make([]models.StateRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ForestArea != sorted[j].ForestArea {
			return sorted[i].ForestArea > sorted[j].ForestArea
		}
		return sorted[i].State < sorted[j].State
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
