// Package chart renders the sales analysis dashboard: four panels
// composited into a single PNG. It consumes cleaned transactions and
// computes its own per-panel aggregates so the image is self-contained.
package chart

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"salespipe/internal/config"
	apperrors "salespipe/internal/errors"
	"salespipe/pkg/contracts/domain"
)

// Panel titles, fixed by the dashboard contract.
const (
	categoryPieTitle  = "Sales Distribution by Category"
	stateBarTitle     = "Total Sales by State"
	categoryMeanTitle = "Average Transaction Value by Category"
	dailyTrendTitle   = "Daily Sales Trend"
)

// titleBandHeight is the strip above the panels holding the dashboard
// title.
const titleBandHeight = 60

// RenderConfig carries canvas geometry and the dashboard title. All
// styling is explicit; there is no package-level state.
type RenderConfig struct {
	Width  int
	Height int
	Title  string
}

// Renderer draws the four-panel sales dashboard as a single PNG.
type Renderer struct {
	config RenderConfig
	logger *slog.Logger
}

// NewRenderer creates a dashboard renderer. Zero config fields fall
// back to the application defaults.
func NewRenderer(cfg RenderConfig, logger *slog.Logger) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = config.DefaultChartWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = config.DefaultChartHeight
	}
	if cfg.Title == "" {
		cfg.Title = config.DefaultChartTitle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{config: cfg, logger: logger}
}

// RenderDashboard renders the 2x2 dashboard for the cleaned dataset and
// writes it to outputPath: category revenue share (pie), per-state
// totals (bar, descending), per-category mean sale (bar, descending)
// and the daily sales trend (line, chronological).
func (r *Renderer) RenderDashboard(ctx context.Context, transactions []domain.Transaction, outputPath string) error {
	if len(transactions) == 0 {
		return apperrors.NewRenderError("no transactions to chart", nil)
	}

	panelW := r.config.Width / 2
	panelH := (r.config.Height - titleBandHeight) / 2

	// The title band and the four panels draw on independent surfaces,
	// so they render concurrently; compositing waits for all of them.
	var band, pie, stateBars, meanBars, trend image.Image
	var g errgroup.Group
	g.Go(func() error {
		img, err := r.renderTitleBand(r.config.Width, titleBandHeight)
		if err != nil {
			return apperrors.NewRenderError("failed to render dashboard title", err)
		}
		band = img
		return nil
	})
	g.Go(func() error {
		img, err := r.renderCategoryPie(panelW, panelH, categoryTotals(transactions))
		if err != nil {
			return apperrors.NewRenderError("failed to render category pie", err)
		}
		pie = img
		return nil
	})
	g.Go(func() error {
		img, err := r.renderBars(panelW, panelH, stateBarTitle, "Sales Amount ($)", stateTotals(transactions))
		if err != nil {
			return apperrors.NewRenderError("failed to render state bars", err)
		}
		stateBars = img
		return nil
	})
	g.Go(func() error {
		img, err := r.renderBars(panelW, panelH, categoryMeanTitle, "Average Amount ($)", categoryMeans(transactions))
		if err != nil {
			return apperrors.NewRenderError("failed to render category mean bars", err)
		}
		meanBars = img
		return nil
	})
	g.Go(func() error {
		img, err := r.renderDailyTrend(panelW, panelH, transactions)
		if err != nil {
			return apperrors.NewRenderError("failed to render daily trend", err)
		}
		trend = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.config.Width, titleBandHeight+2*panelH))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, r.config.Width, titleBandHeight), band, image.Point{}, draw.Over)

	offsets := []image.Point{
		{X: 0, Y: titleBandHeight},
		{X: panelW, Y: titleBandHeight},
		{X: 0, Y: titleBandHeight + panelH},
		{X: panelW, Y: titleBandHeight + panelH},
	}
	for i, panel := range []image.Image{pie, stateBars, meanBars, trend} {
		rect := image.Rect(offsets[i].X, offsets[i].Y, offsets[i].X+panelW, offsets[i].Y+panelH)
		draw.Draw(canvas, rect, panel, image.Point{}, draw.Over)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return apperrors.NewRenderError("failed to create output directory", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return apperrors.NewRenderError("failed to create dashboard file", err)
	}
	defer file.Close()

	if err := png.Encode(file, canvas); err != nil {
		return apperrors.NewRenderError("failed to encode dashboard", err)
	}

	r.logger.InfoContext(ctx, "Rendered dashboard",
		slog.String("path", outputPath),
		slog.Int("width", r.config.Width),
		slog.Int("height", titleBandHeight+2*panelH),
		slog.Int("transactions", len(transactions)))

	return nil
}

// renderTitleBand draws the dashboard title centered on a transparent
// strip; the composite supplies the white background.
func (r *Renderer) renderTitleBand(width, height int) (image.Image, error) {
	renderer, err := gochart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	renderer.SetFont(font)
	renderer.SetFontColor(gochart.ColorBlack)
	renderer.SetFontSize(24)

	box := renderer.MeasureText(r.config.Title)
	x := (width - box.Width()) / 2
	if x < 0 {
		x = 0
	}
	y := (height + box.Height()) / 2
	renderer.Text(r.config.Title, x, y)

	var buf bytes.Buffer
	if err := renderer.Save(&buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func (r *Renderer) renderCategoryPie(width, height int, categories []labeledValue) (image.Image, error) {
	var total float64
	for _, c := range categories {
		total += c.value
	}

	values := make([]gochart.Value, 0, len(categories))
	for _, c := range categories {
		label := c.label
		if total > 0 {
			label = fmt.Sprintf("%s (%.1f%%)", c.label, c.value/total*100)
		}
		values = append(values, gochart.Value{Label: label, Value: c.value})
	}

	pie := gochart.PieChart{
		Title:  categoryPieTitle,
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func (r *Renderer) renderBars(width, height int, title, axisName string, entries []labeledValue) (image.Image, error) {
	bars := make([]gochart.Value, 0, len(entries))
	var max float64
	for _, e := range entries {
		bars = append(bars, gochart.Value{Label: e.label, Value: e.value})
		if e.value > max {
			max = e.value
		}
	}

	barChart := gochart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Bars:   bars,
		YAxis: gochart.YAxis{
			Name:  axisName,
			Range: &gochart.ContinuousRange{Min: 0, Max: paddedMax(max)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
	}

	var buf bytes.Buffer
	if err := barChart.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func (r *Renderer) renderDailyTrend(width, height int, transactions []domain.Transaction) (image.Image, error) {
	days, values := dailyTotals(transactions)

	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	xaxis := gochart.XAxis{
		ValueFormatter: gochart.TimeValueFormatterWithFormat(domain.DateLayout),
	}
	// A single day has no x-extent; pad half a day either side.
	if len(days) == 1 {
		xaxis.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(days[0].Add(-12 * time.Hour)),
			Max: gochart.TimeToFloat64(days[0].Add(12 * time.Hour)),
		}
	}

	lineChart := gochart.Chart{
		Title:  dailyTrendTitle,
		Width:  width,
		Height: height,
		XAxis:  xaxis,
		YAxis: gochart.YAxis{
			Name:  "Daily Sales ($)",
			Range: &gochart.ContinuousRange{Min: 0, Max: paddedMax(max)},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Daily Sales",
				XValues: days,
				YValues: values,
				Style: gochart.Style{
					StrokeWidth: 2.5,
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := lineChart.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// labeledValue is one chart datum at the float boundary.
type labeledValue struct {
	label string
	value float64
}

// categoryTotals sums revenue per category, keys ascending.
func categoryTotals(transactions []domain.Transaction) []labeledValue {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		key := string(tx.ProductCategory)
		totals[key] = totals[key].Add(tx.SalesAmount)
	}
	entries := toLabeledValues(totals)
	sort.Slice(entries, func(i, j int) bool { return entries[i].label < entries[j].label })
	return entries
}

// stateTotals sums revenue per state, descending by value.
func stateTotals(transactions []domain.Transaction) []labeledValue {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		totals[tx.State] = totals[tx.State].Add(tx.SalesAmount)
	}
	entries := toLabeledValues(totals)
	sortDescending(entries)
	return entries
}

// categoryMeans computes the mean sale per category, descending.
func categoryMeans(transactions []domain.Transaction) []labeledValue {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, tx := range transactions {
		key := string(tx.ProductCategory)
		totals[key] = totals[key].Add(tx.SalesAmount)
		counts[key]++
	}

	entries := make([]labeledValue, 0, len(totals))
	for key, total := range totals {
		mean := total.Div(decimal.NewFromInt(counts[key]))
		entries = append(entries, labeledValue{label: key, value: mean.InexactFloat64()})
	}
	sortDescending(entries)
	return entries
}

// dailyTotals sums revenue per calendar day, chronological.
func dailyTotals(transactions []domain.Transaction) ([]time.Time, []float64) {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		day := tx.TransactionDate.Format(domain.DateLayout)
		totals[day] = totals[day].Add(tx.SalesAmount)
	}

	keys := make([]string, 0, len(totals))
	for day := range totals {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	days := make([]time.Time, 0, len(keys))
	values := make([]float64, 0, len(keys))
	for _, key := range keys {
		day, err := time.Parse(domain.DateLayout, key)
		if err != nil {
			continue
		}
		days = append(days, day)
		values = append(values, totals[key].InexactFloat64())
	}
	return days, values
}

func toLabeledValues(totals map[string]decimal.Decimal) []labeledValue {
	entries := make([]labeledValue, 0, len(totals))
	for key, total := range totals {
		entries = append(entries, labeledValue{label: key, value: total.InexactFloat64()})
	}
	return entries
}

func sortDescending(entries []labeledValue) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].label < entries[j].label
	})
}

// paddedMax gives bar and line charts y-headroom above the tallest
// value; a floor of one keeps the range valid for all-zero data.
func paddedMax(max float64) float64 {
	padded := max * 1.1
	if padded < 1 {
		padded = 1
	}
	return padded
}
