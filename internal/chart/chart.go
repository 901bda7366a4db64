// Package chart renders dashboard PNGs from the merged snapshot.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vandash/vandash/internal/models"
)

var (
	forestGreen = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	darkGreen   = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	lightGreen  = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	lossRed     = color.RGBA{R: 239, G: 83, B: 80, A: 255}
	skyBlue     = color.RGBA{R: 135, G: 206, B: 235, A: 255}
)

// NationalTrend plots total recorded forest area across the years in the
// snapshot.
func NationalTrend(national []models.NationalRecord) ([]byte, error) {
	if len(national) == 0 {
		return nil, fmt.Errorf("no national records to plot")
	}

	p := plot.New()
	p.Title.Text = "Recorded Forest Area, All India"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Forest area (sq km)"

	pts := make(plotter.XYs, len(national))
	for i, n := range national {
		pts[i].X = float64(n.Year)
		pts[i].Y = n.ForestArea
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("line points: %w", err)
	}
	line.Color = forestGreen
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = darkGreen

	p.Add(plotter.NewGrid(), line, points)
	return render(p, 8*vg.Inch, 4*vg.Inch)
}

// ForestRainfall plots annual rainfall bars under the forest cover line,
// one column per state, ordered by forest area descending. States that do
// not report rainfall are left out. The axis carries the forest scale; the
// bars are rescaled into it so both series stay readable on one plot.
func ForestRainfall(records []models.StateRecord) ([]byte, error) {
	var rows []models.StateRecord
	for _, r := range records {
		if r.Rainfall.Valid {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no states report rainfall")
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ForestArea != rows[j].ForestArea {
			return rows[i].ForestArea > rows[j].ForestArea
		}
		return rows[i].State < rows[j].State
	})

	var maxForest, maxRain float64
	for _, r := range rows {
		if r.ForestArea > maxForest {
			maxForest = r.ForestArea
		}
		if r.Rainfall.Float64 > maxRain {
			maxRain = r.Rainfall.Float64
		}
	}
	scale := 1.0
	if maxRain > 0 && maxForest > 0 {
		scale = maxForest / maxRain
	}

	names := make([]string, len(rows))
	rain := make(plotter.Values, len(rows))
	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		names[i] = r.State
		rain[i] = r.Rainfall.Float64 * scale
		pts[i].X = float64(i)
		pts[i].Y = r.ForestArea
	}

	p := plot.New()
	p.Title.Text = "Forest Cover vs. Annual Rainfall per State"
	p.Y.Label.Text = "Forest cover (sq km)"

	bars, err := plotter.NewBarChart(rain, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("rainfall bars: %w", err)
	}
	bars.Color = skyBlue
	bars.LineStyle.Width = 0

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("line points: %w", err)
	}
	line.Color = forestGreen
	line.Width = vg.Points(3)
	points.Shape = draw.CircleGlyph{}
	points.Color = darkGreen

	p.Add(bars, line, points)
	p.Legend.Add("Annual rainfall (mm, rescaled)", bars)
	p.Legend.Add("Forest cover (sq km)", line)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = draw.XLeft

	return render(p, 8*vg.Inch, 4*vg.Inch)
}

// RankingBars plots a gainers/losers leaderboard. Positive deltas are
// green, losses red.
func RankingBars(entries []models.RankingEntry, title string) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no ranking entries to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Change (sq km)"

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.State

		bars, err := plotter.NewBarChart(sparseValues(len(entries), i, e.Delta), vg.Points(18))
		if err != nil {
			return nil, fmt.Errorf("bar chart: %w", err)
		}
		bars.LineStyle.Width = 0
		if e.Delta >= 0 {
			bars.Color = forestGreen
		} else {
			bars.Color = lossRed
		}
		p.Add(bars)
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = draw.XLeft

	return render(p, 8*vg.Inch, 4*vg.Inch)
}

// Composition plots the legal-status breakdown (reserved, protected,
// unclassed) for the given states as stacked bars.
func Composition(records []models.StateRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to plot")
	}

	p := plot.New()
	p.Title.Text = "Forest Composition by Legal Status"
	p.Y.Label.Text = "Area (sq km)"

	n := len(records)
	reserved := make(plotter.Values, n)
	protected := make(plotter.Values, n)
	unclassed := make(plotter.Values, n)
	names := make([]string, n)
	for i, r := range records {
		names[i] = r.State
		reserved[i] = r.Reserved.Float64
		protected[i] = r.Protected.Float64
		unclassed[i] = r.Unclassed.Float64
	}

	width := vg.Points(18)

	resBars, err := plotter.NewBarChart(reserved, width)
	if err != nil {
		return nil, fmt.Errorf("reserved bars: %w", err)
	}
	proBars, err := plotter.NewBarChart(protected, width)
	if err != nil {
		return nil, fmt.Errorf("protected bars: %w", err)
	}
	uncBars, err := plotter.NewBarChart(unclassed, width)
	if err != nil {
		return nil, fmt.Errorf("unclassed bars: %w", err)
	}

	resBars.Color = darkGreen
	proBars.Color = forestGreen
	uncBars.Color = lightGreen
	resBars.LineStyle.Width = 0
	proBars.LineStyle.Width = 0
	uncBars.LineStyle.Width = 0

	proBars.StackOn(resBars)
	uncBars.StackOn(proBars)

	p.Add(resBars, proBars, uncBars)
	p.Legend.Add("Reserved", resBars)
	p.Legend.Add("Protected", proBars)
	p.Legend.Add("Unclassed", uncBars)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = draw.XLeft

	return render(p, 8*vg.Inch, 4*vg.Inch)
}

// sparseValues builds a value slice that is zero everywhere except index i,
// so each bar can carry its own gain/loss color on a shared nominal axis.
func sparseValues(n, i int, v float64) plotter.Values {
	vals := make(plotter.Values, n)
	vals[i] = v
	return vals
}

func render(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write png: %w", err)
	}
	return buf.Bytes(), nil
}
