package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vandash/vandash/internal/models"
	"github.com/vandash/vandash/internal/store"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	records := []models.StateRecord{
		{State: "Kerala", Year: 2005, ForestArea: 11268},
		{State: "Kerala", Year: 2023, ForestArea: 11527, Reserved: nf(9107), Protected: nf(1837), Unclassed: nf(583), TreeCover: nf(2892), Rainfall: nf(3055)},
		{State: "Nagaland", Year: 2005, ForestArea: 9222},
		{State: "Nagaland", Year: 2023, ForestArea: 8623},
	}
	national := []models.NationalRecord{
		{Year: 2005, ReportingStates: 2, ForestArea: 20490},
		{Year: 2023, ReportingStates: 2, ForestArea: 20150, TreeCover: 2892, RainfallAvg: nf(3055)},
	}
	if err := st.ReplaceSnapshot(records, national); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	return NewServer(st, Config{Port: "0", Year: 2023, BaselineYear: 2005})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status string `json:"status"`
		Years  []int  `json:"years"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if len(body.Years) != 2 || body.Years[0] != 2005 || body.Years[1] != 2023 {
		t.Errorf("years = %v, want [2005 2023]", body.Years)
	}
}

func TestIndexPage(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"India Forestry Dashboard", "Kerala", "Nagaland", "20,150"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestIndexNotFoundForUnknownPath(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeepDivePage(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/deepdive")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Deep Dive") {
		t.Error("page missing heading")
	}
}

func TestStatePage(t *testing.T) {
	srv := setupTestServer(t)

	// Without a selection the page offers the selector only.
	w := get(t, srv.Handler(), "/state")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"State Drill-Down", "Kerala", "Nagaland"} {
		if !strings.Contains(body, want) {
			t.Errorf("selector page missing %q", want)
		}
	}

	w = get(t, srv.Handler(), "/state?name=Kerala")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body = w.Body.String()
	for _, want := range []string{"Profile: Kerala", "11,527", "3,055", "2005"} {
		if !strings.Contains(body, want) {
			t.Errorf("drill-down missing %q", want)
		}
	}
	// Kerala has no mangrove data.
	if !strings.Contains(body, "No major mangrove ecosystem") {
		t.Error("drill-down missing mangrove assessment")
	}
}

func TestStatePageUnknownState(t *testing.T) {
	srv := setupTestServer(t)
	if w := get(t, srv.Handler(), "/state?name=Atlantis"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestIndexShowsRecentFailure(t *testing.T) {
	srv := setupTestServer(t)

	run, err := srv.store.StartRun()
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	run.Success = false
	run.ErrorMessage = sql.NullString{String: "rainfall source: no such file", Valid: true}
	if err := srv.store.CompleteRun(run); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}

	w := get(t, srv.Handler(), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "pipeline failure") {
		t.Error("page missing failure notice")
	}
	if !strings.Contains(body, "rainfall source: no such file") {
		t.Error("page missing failure message")
	}
}

func TestMapPageWithoutGeo(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/map")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No boundary file configured") {
		t.Error("page should explain the missing boundary file")
	}
}

func TestAPIStates(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/api/states?year=2023")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []models.StateRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].State != "Kerala" || records[0].ForestArea != 11527 {
		t.Errorf("first = %+v, want Kerala 11527", records[0])
	}
}

func TestAPIStatesBadYear(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/api/states?year=latest")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAPIStateSeries(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/api/state?name=Kerala")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var series []models.StateRecord
	if err := json.NewDecoder(w.Body).Decode(&series); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(series) != 2 || series[0].Year != 2005 || series[1].Year != 2023 {
		t.Fatalf("series = %+v, want 2005 then 2023", series)
	}

	if w := get(t, srv.Handler(), "/api/state?name=Atlantis"); w.Code != http.StatusNotFound {
		t.Errorf("unknown state status = %d, want 404", w.Code)
	}
	if w := get(t, srv.Handler(), "/api/state"); w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}
}

func TestAPIRankings(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/api/rankings?metric=forest_area&n=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp RankingsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Metric != "forest_area" || resp.FromYear != 2005 || resp.ToYear != 2023 {
		t.Errorf("params = %+v", resp)
	}
	if len(resp.Top) != 1 || resp.Top[0].State != "Kerala" || resp.Top[0].Delta != 259 {
		t.Errorf("top = %+v, want Kerala +259", resp.Top)
	}
	if len(resp.Bottom) != 1 || resp.Bottom[0].State != "Nagaland" || resp.Bottom[0].Delta != -599 {
		t.Errorf("bottom = %+v, want Nagaland -599", resp.Bottom)
	}
}

func TestAPIRankingsBadParams(t *testing.T) {
	srv := setupTestServer(t)
	for _, path := range []string{
		"/api/rankings?metric=bogus",
		"/api/rankings?n=0",
		"/api/rankings?from=abc",
	} {
		if w := get(t, srv.Handler(), path); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
}

func TestAPINational(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/api/national")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []models.NationalRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 || records[1].ForestArea != 20150 {
		t.Fatalf("records = %+v, want 2023 total 20150", records)
	}
}

func TestAPIGeoJSONWithoutBoundaries(t *testing.T) {
	srv := setupTestServer(t)
	if w := get(t, srv.Handler(), "/api/geojson"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAPIInsightsWithoutGenerator(t *testing.T) {
	srv := setupTestServer(t)
	if w := get(t, srv.Handler(), "/api/insights"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestCardEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/card.png")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	body := w.Body.Bytes()
	if len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Error("body is not a PNG")
	}

	// Second request is served from the cache and stays identical.
	again := get(t, srv.Handler(), "/card.png")
	if again.Body.Len() != len(body) {
		t.Errorf("cached card size = %d, want %d", again.Body.Len(), len(body))
	}
}

func TestChartEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	for _, path := range []string{
		"/charts/national-trend.png",
		"/charts/forest-rainfall.png",
		"/charts/rankings.png",
		"/charts/composition.png",
	} {
		w := get(t, srv.Handler(), path)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, w.Code)
			continue
		}
		body := w.Body.Bytes()
		if len(body) < 8 || string(body[1:4]) != "PNG" {
			t.Errorf("%s body is not a PNG", path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	w := get(t, srv.Handler(), "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
