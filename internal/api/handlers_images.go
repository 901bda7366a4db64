package api

import (
	"net/http"

	"github.com/vandash/vandash/internal/chart"
	"github.com/vandash/vandash/internal/imagegen"
	"github.com/vandash/vandash/internal/models"
	"github.com/vandash/vandash/internal/rank"
)

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.cardCache.Get(); ok {
		writePNG(w, data)
		return
	}

	national, err := s.store.GetNationalRecords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var current *models.NationalRecord
	for i := range national {
		if national[i].Year == s.cfg.Year {
			current = &national[i]
		}
	}
	if current == nil {
		http.Error(w, "no snapshot loaded", http.StatusNotFound)
		return
	}

	data, err := imagegen.Render(imagegen.CardData{
		Year:            current.Year,
		ForestArea:      current.ForestArea,
		TreeCover:       current.TreeCover,
		ReportingStates: current.ReportingStates,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.cardCache.Set(data)
	writePNG(w, data)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	national, err := s.store.GetNationalRecords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := chart.NationalTrend(national)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writePNG(w, data)
}

func (s *Server) handleForestRainfallChart(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetStateRecords(s.cfg.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := chart.ForestRainfall(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writePNG(w, data)
}

func (s *Server) handleRankingsChart(w http.ResponseWriter, r *http.Request) {
	gainers, losers, err := s.leaderboards(rank.MetricForestArea, leaderboardSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	// One chart with gains on the left and losses on the right.
	entries := make([]models.RankingEntry, 0, len(gainers)+len(losers))
	entries = append(entries, gainers...)
	for i := len(losers) - 1; i >= 0; i-- {
		entries = append(entries, losers[i])
	}

	data, err := chart.RankingBars(entries, "Forest Area Change, Gainers and Losers")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writePNG(w, data)
}

func (s *Server) handleCompositionChart(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetStateRecords(s.cfg.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := chart.Composition(topByForestArea(records, 10))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writePNG(w, data)
}
