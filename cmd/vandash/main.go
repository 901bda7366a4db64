package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/vandash/vandash/internal/api"
	"github.com/vandash/vandash/internal/export"
	"github.com/vandash/vandash/internal/ingest"
	"github.com/vandash/vandash/internal/insights"
	"github.com/vandash/vandash/internal/rank"
	"github.com/vandash/vandash/internal/store"
)

type cli struct {
	DB           string `help:"Path to the SQLite snapshot database." default:"data/vandash.db"`
	Year         int    `help:"Current report edition." default:"2023"`
	BaselineYear int    `help:"Baseline edition for change figures." default:"2005"`

	ETL      etlCmd      `cmd:"" help:"Load, clean and merge the source CSVs into a fresh snapshot."`
	Serve    serveCmd    `cmd:"" help:"Run the dashboard server."`
	Fetch    fetchCmd    `cmd:"" help:"Download the source files into the data directory."`
	Rank     rankCmd     `cmd:"" help:"Print the change leaderboard for one metric."`
	Export   exportCmd   `cmd:"" help:"Write the snapshot to an XLSX workbook."`
	Insights insightsCmd `cmd:"" help:"Print an analyst narrative for the snapshot."`
}

// appCtx is handed to every subcommand after the database is opened.
type appCtx struct {
	store        *store.Store
	year         int
	baselineYear int
}

type etlCmd struct {
	ForestArea string `help:"Recorded forest area CSV." default:"data/Recorded_Forest_Area.csv"`
	TreeCover  string `help:"Statewise tree cover CSV." default:"data/StatewiseTreeCover.csv"`
	Mangrove   string `help:"Mangrove cover time series CSV." default:"data/Mangrove_Cover.csv"`
	Rainfall   string `help:"Statewise rainfall CSV." default:"data/Agro_India_States.csv"`
}

func (c *etlCmd) Run(app *appCtx) error {
	pipeline := ingest.NewPipeline(app.store, ingest.Sources{
		ForestArea: c.ForestArea,
		TreeCover:  c.TreeCover,
		Mangrove:   c.Mangrove,
		Rainfall:   c.Rainfall,
	}, app.year, app.baselineYear)

	result, err := pipeline.Run()
	if err != nil {
		return err
	}
	log.Printf("snapshot ready: %d state records, %d national rows", len(result.Records), len(result.National))
	return nil
}

type serveCmd struct {
	Port    string `help:"HTTP server port." default:"8080"`
	GeoJSON string `help:"State boundary GeoJSON for the map pages." default:"data/india_states.geojson"`
}

func (c *serveCmd) Run(app *appCtx) error {
	server := api.NewServer(app.store, api.Config{
		Port:         c.Port,
		Year:         app.year,
		BaselineYear: app.baselineYear,
		GeoJSONPath:  c.GeoJSON,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type fetchCmd struct {
	Dir        string `help:"Destination directory." default:"data"`
	GeoJSONURL string `help:"State boundary GeoJSON URL." default:"${geojson_url}"`
	FTPHost    string `help:"Optional FTP mirror (host:port) for the mangrove archive."`
	FTPPath    string `help:"Archive path on the FTP mirror."`
}

func (c *fetchCmd) Run(app *appCtx) error {
	fetcher := ingest.NewFetcher()
	path, err := fetcher.FetchTo("geojson", c.GeoJSONURL, c.Dir, "india_states.geojson")
	if err != nil {
		return err
	}
	log.Printf("fetched %s", path)

	if c.FTPHost != "" {
		archive := ingest.NewArchiveClient(c.FTPHost)
		body, err := archive.Fetch(c.FTPPath)
		if err != nil {
			return err
		}
		out := filepath.Join(c.Dir, "Mangrove_Cover.csv")
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Printf("fetched %s", out)
	}
	return nil
}

type rankCmd struct {
	Metric string `help:"Metric to rank: forest_area, tree_cover, mangrove or rainfall." default:"forest_area"`
	N      int    `help:"Leaderboard size." default:"5"`
}

func (c *rankCmd) Run(app *appCtx) error {
	metric, err := rank.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	records, err := app.store.GetAllStateRecords()
	if err != nil {
		return err
	}
	entries, err := rank.Deltas(records, metric, app.baselineYear, app.year)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %d to %d\n\nTop gainers:\n", metric, app.baselineYear, app.year)
	for _, e := range rank.Top(entries, c.N) {
		fmt.Printf("  %2d. %-30s %+.0f\n", e.Rank, e.State, e.Delta)
	}
	fmt.Println("\nTop losers:")
	for _, e := range rank.Bottom(entries, c.N) {
		fmt.Printf("  %2d. %-30s %+.0f\n", e.Rank, e.State, e.Delta)
	}
	return nil
}

type exportCmd struct {
	Out    string `help:"Output workbook path." default:"vandash.xlsx"`
	Metric string `help:"Leaderboard metric." default:"forest_area"`
	N      int    `help:"Leaderboard size." default:"5"`
}

func (c *exportCmd) Run(app *appCtx) error {
	metric, err := rank.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	records, err := app.store.GetAllStateRecords()
	if err != nil {
		return err
	}
	national, err := app.store.GetNationalRecords()
	if err != nil {
		return err
	}

	wb := export.Workbook{
		Records:  records,
		National: national,
		Metric:   string(metric),
		FromYear: app.baselineYear,
		ToYear:   app.year,
	}
	if entries, err := rank.Deltas(records, metric, app.baselineYear, app.year); err != nil {
		log.Printf("leaderboard omitted: %v", err)
	} else {
		top := rank.Top(entries, c.N)
		wb.Rankings = append(top, rank.Bottom(entries, c.N)...)
	}

	if err := export.Write(c.Out, wb); err != nil {
		return err
	}
	log.Printf("wrote %s", c.Out)
	return nil
}

type insightsCmd struct{}

func (c *insightsCmd) Run(app *appCtx) error {
	gen, err := insights.NewGenerator()
	if err != nil {
		return err
	}

	national, err := app.store.GetNationalRecords()
	if err != nil {
		return err
	}
	digest := insights.Digest{Year: app.year, BaselineYear: app.baselineYear}
	for i := range national {
		switch national[i].Year {
		case app.year:
			digest.National = national[i]
		case app.baselineYear:
			digest.Baseline = &national[i]
		}
	}
	if digest.National.Year == 0 {
		return fmt.Errorf("no snapshot for %d; run the etl command first", app.year)
	}

	records, err := app.store.GetAllStateRecords()
	if err != nil {
		return err
	}
	if entries, err := rank.Deltas(records, rank.MetricForestArea, app.baselineYear, app.year); err == nil {
		digest.TopGainers = rank.Top(entries, 5)
		digest.TopLosers = rank.Bottom(entries, 5)
	}

	narrative, err := gen.Summarize(context.Background(), digest)
	if err != nil {
		return err
	}
	fmt.Println(narrative)
	return nil
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("vandash"),
		kong.Description("India forestry dashboard: ETL, charts and API over the State of Forest Report data."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.Vars{"geojson_url": ingest.DefaultGeoJSONURL},
	)

	if dir := filepath.Dir(args.DB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
	}
	db, err := sql.Open("sqlite", args.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	app := &appCtx{store: st, year: args.Year, baselineYear: args.BaselineYear}
	kctx.FatalIfErrorf(kctx.Run(app))
}
