package api

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vandash/vandash/internal/geo"
	"github.com/vandash/vandash/internal/imagegen"
	"github.com/vandash/vandash/internal/insights"
	"github.com/vandash/vandash/internal/store"
)

//go:embed templates/*
var templateFS embed.FS

// Config carries the serving parameters the handlers need.
type Config struct {
	Port         string
	Year         int // current ISFR edition
	BaselineYear int
	GeoJSONPath  string // optional; map endpoints 404 without it
}

type Server struct {
	store     *store.Store
	cfg       Config
	tmpl      *template.Template
	geo       *geo.Boundaries
	insights  *insights.Generator
	cardCache *imagegen.Cache
}

func NewServer(st *store.Store, cfg Config) *Server {
	funcs := template.FuncMap{
		"fmtArea": formatArea,
		"fmtDelta": func(v float64) string {
			if v >= 0 {
				return "+" + formatArea(v)
			}
			return "−" + formatArea(-v)
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

	var boundaries *geo.Boundaries
	if cfg.GeoJSONPath != "" {
		b, err := geo.Load(cfg.GeoJSONPath)
		if err != nil {
			log.Printf("api: map disabled: %v", err)
		} else {
			boundaries = b
		}
	}

	var gen *insights.Generator
	if g, err := insights.NewGenerator(); err != nil {
		log.Printf("api: insights disabled: %v", err)
	} else {
		gen = g
	}

	return &Server{
		store:     st,
		cfg:       cfg,
		tmpl:      tmpl,
		geo:       boundaries,
		insights:  gen,
		cardCache: imagegen.NewCache(15 * time.Minute),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/deepdive", s.handleDeepDive)
	mux.HandleFunc("/map", s.handleMap)
	mux.HandleFunc("/state", s.handleStatePage)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/card.png", s.handleCard)
	mux.HandleFunc("/charts/national-trend.png", s.handleTrendChart)
	mux.HandleFunc("/charts/forest-rainfall.png", s.handleForestRainfallChart)
	mux.HandleFunc("/charts/rankings.png", s.handleRankingsChart)
	mux.HandleFunc("/charts/composition.png", s.handleCompositionChart)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/api/states", s.handleAPIStates)
	mux.HandleFunc("/api/state", s.handleAPIState)
	mux.HandleFunc("/api/national", s.handleAPINational)
	mux.HandleFunc("/api/rankings", s.handleAPIRankings)
	mux.HandleFunc("/api/geojson", s.handleAPIGeoJSON)
	mux.HandleFunc("/api/insights", s.handleAPIInsights)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
