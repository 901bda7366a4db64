package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/vandash/vandash/internal/geo"
	"github.com/vandash/vandash/internal/models"
	"github.com/vandash/vandash/internal/store"
)

// SummaryData backs the executive summary page and /api/summary.
type SummaryData struct {
	Year           int
	BaselineYear   int
	National       *models.NationalRecord
	Baseline       *models.NationalRecord
	PctChange      float64 // forest area vs baseline, percent
	States         []models.StateRecord
	TopGainers     []models.RankingEntry
	TopLosers      []models.RankingEntry
	LastRun        *store.ETLRun
	RecentFailures []store.ETLRun
	LastUpdated    time.Time
}

// DeepDiveData backs the deep-dive page: composition for the largest
// states plus the full leaderboard.
type DeepDiveData struct {
	Year      int
	TopStates []models.StateRecord // by forest area, for the composition chart
	Gainers   []models.RankingEntry
	Losers    []models.RankingEntry
	FromYear  int
	ToYear    int
}

// StateData backs the per-state drill-down page.
type StateData struct {
	Name    string
	Year    int
	States  []string             // selector options, current edition
	Current *models.StateRecord  // nil when the state has no current-year row
	Series  []models.StateRecord // every edition on record
}

// MapData backs the choropleth page.
type MapData struct {
	Year    int
	Metrics []MapMetric
	Diff    *geo.Diff
	HasGeo  bool
}

// MapMetric is one selectable choropleth layer.
type MapMetric struct {
	Key   string
	Label string
}

var mapMetrics = []MapMetric{
	{Key: "forest_area", Label: "Recorded Forest Area"},
	{Key: "tree_cover", Label: "Tree Cover"},
	{Key: "rainfall", Label: "Annual Rainfall"},
	{Key: "mangrove", Label: "Mangrove Cover"},
}

// RankingsResponse is the /api/rankings payload.
type RankingsResponse struct {
	Metric   string                `json:"metric"`
	FromYear int                   `json:"from_year"`
	ToYear   int                   `json:"to_year"`
	Top      []models.RankingEntry `json:"top"`
	Bottom   []models.RankingEntry `json:"bottom"`
}

// formatArea renders an area with thousands separators for templates.
func formatArea(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
