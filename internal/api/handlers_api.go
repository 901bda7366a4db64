package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vandash/vandash/internal/insights"
	"github.com/vandash/vandash/internal/rank"
)

var errInvalidN = errors.New("n must be a positive integer")

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	data, err := s.getSummaryData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleAPIStates(w http.ResponseWriter, r *http.Request) {
	year := s.cfg.Year
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}

	records, err := s.store.GetStateRecords(year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name parameter required", http.StatusBadRequest)
		return
	}

	series, err := s.store.GetStateSeries(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(series) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(series)
}

func (s *Server) handleAPINational(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetNationalRecords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (s *Server) handleAPIRankings(w http.ResponseWriter, r *http.Request) {
	metric, fromYear, toYear, n, err := s.rankingParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := s.store.GetAllStateRecords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entries, err := rank.Deltas(records, metric, fromYear, toYear)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := RankingsResponse{
		Metric:   string(metric),
		FromYear: fromYear,
		ToYear:   toYear,
		Top:      rank.Top(entries, n),
		Bottom:   rank.Bottom(entries, n),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// rankingParams parses metric/from/to/n with the dashboard defaults.
func (s *Server) rankingParams(r *http.Request) (rank.Metric, int, int, int, error) {
	q := r.URL.Query()

	metric := rank.MetricForestArea
	if m := q.Get("metric"); m != "" {
		parsed, err := rank.ParseMetric(m)
		if err != nil {
			return "", 0, 0, 0, err
		}
		metric = parsed
	}

	fromYear, toYear := s.cfg.BaselineYear, s.cfg.Year
	if v := q.Get("from"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return "", 0, 0, 0, err
		}
		fromYear = y
	}
	if v := q.Get("to"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return "", 0, 0, 0, err
		}
		toYear = y
	}

	n := leaderboardSize
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return "", 0, 0, 0, errInvalidN
		}
		n = parsed
	}
	return metric, fromYear, toYear, n, nil
}

func (s *Server) handleAPIGeoJSON(w http.ResponseWriter, r *http.Request) {
	if s.geo == nil {
		http.Error(w, "boundary file not configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(s.geo.Raw)
}

func (s *Server) handleAPIInsights(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		http.Error(w, "insights not configured", http.StatusServiceUnavailable)
		return
	}

	data, err := s.getSummaryData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data.National == nil {
		http.Error(w, "no snapshot loaded", http.StatusServiceUnavailable)
		return
	}

	digest := insights.Digest{
		Year:         data.Year,
		BaselineYear: data.BaselineYear,
		National:     *data.National,
		Baseline:     data.Baseline,
		TopGainers:   data.TopGainers,
		TopLosers:    data.TopLosers,
	}
	narrative, err := s.insights.Summarize(r.Context(), digest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"narrative": narrative})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	years, err := s.store.GetYears()
	status := "ok"
	if err != nil || len(years) == 0 {
		status = "empty"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"years":  years,
	})
}
