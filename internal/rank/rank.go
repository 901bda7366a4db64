// Package rank computes year-over-year leaderboards from the merged
// master table.
package rank

import (
	"fmt"
	"sort"

	"github.com/vandash/vandash/internal/models"
)

// Metric selects which measure a ranking is computed over.
type Metric string

const (
	MetricForestArea Metric = "forest_area"
	MetricTreeCover  Metric = "tree_cover"
	MetricMangrove   Metric = "mangrove"
	MetricRainfall   Metric = "rainfall"
)

// ParseMetric validates a metric name from the CLI or query string.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricForestArea, MetricTreeCover, MetricMangrove, MetricRainfall:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// value extracts the metric from a record. ok is false when the record
// does not report the measure; such states are excluded from the ranking
// rather than ranked against a fabricated zero.
func value(r models.StateRecord, m Metric) (float64, bool) {
	switch m {
	case MetricForestArea:
		return r.ForestArea, true
	case MetricTreeCover:
		return r.TreeCover.Float64, r.TreeCover.Valid
	case MetricMangrove:
		return r.Mangrove.Float64, r.Mangrove.Valid
	case MetricRainfall:
		return r.Rainfall.Float64, r.Rainfall.Valid
	}
	return 0, false
}

// Deltas computes per-state delta = value(toYear) - value(fromYear) for
// every state present in both years, sorted by delta descending with state
// name as the deterministic tie-break. Rank is 1-based in that order.
// Aggregate rows never reach this point; the cleaner removes them.
func Deltas(records []models.StateRecord, metric Metric, fromYear, toYear int) ([]models.RankingEntry, error) {
	if fromYear >= toYear {
		return nil, fmt.Errorf("from year %d must precede to year %d", fromYear, toYear)
	}

	from := make(map[string]float64)
	to := make(map[string]float64)
	for _, r := range records {
		v, ok := value(r, metric)
		if !ok {
			continue
		}
		switch r.Year {
		case fromYear:
			from[r.State] = v
		case toYear:
			to[r.State] = v
		}
	}

	var entries []models.RankingEntry
	for state, v2 := range to {
		v1, ok := from[state]
		if !ok {
			continue
		}
		entries = append(entries, models.RankingEntry{
			State:     state,
			FromValue: v1,
			ToValue:   v2,
			Delta:     v2 - v1,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no state reports %s in both %d and %d", metric, fromYear, toYear)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Delta != entries[j].Delta {
			return entries[i].Delta > entries[j].Delta
		}
		return entries[i].State < entries[j].State
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Top returns the n largest gainers, best first.
func Top(entries []models.RankingEntry, n int) []models.RankingEntry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]models.RankingEntry, n)
	copy(out, entries[:n])
	return out
}

// Bottom returns the n largest losers, worst first.
func Bottom(entries []models.RankingEntry, n int) []models.RankingEntry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]models.RankingEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}
