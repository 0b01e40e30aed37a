package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salespipe/internal/config"
	apperrors "salespipe/internal/errors"
	"salespipe/internal/infrastructure"
	"salespipe/pkg/contracts/domain"
)

// CategoryRevenue is one entry of the ranked category table.
type CategoryRevenue struct {
	Category     domain.ProductCategory `json:"category"`
	Revenue      decimal.Decimal        `json:"revenue"`
	Transactions int                    `json:"transactions"`
	AverageValue decimal.Decimal        `json:"average_value"`
}

// StateRevenue is the sales total of one state.
type StateRevenue struct {
	State   string          `json:"state"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DayRevenue is the sales total of one calendar day (YYYY-MM-DD).
type DayRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReport holds the computed aggregates of one analysis run. It is
// printed to the console and persisted as the insights JSON artifact.
type SalesReport struct {
	GeneratedAt       time.Time         `json:"generated_at"`
	PeriodStart       string            `json:"period_start"`
	PeriodEnd         string            `json:"period_end"`
	TotalTransactions int               `json:"total_transactions"`
	TotalSales        decimal.Decimal   `json:"total_sales"`
	AverageSale       decimal.Decimal   `json:"average_sale"`
	Categories        []CategoryRevenue `json:"categories"`
	States            []StateRevenue    `json:"states"`
	Daily             []DayRevenue      `json:"daily"`
	TopState          StateRevenue      `json:"top_state"`
	BestDay           DayRevenue        `json:"best_day"`
	ChartPath         string            `json:"chart_path,omitempty"`
}

// ChartRenderer renders the dashboard image for a cleaned dataset.
type ChartRenderer interface {
	RenderDashboard(ctx context.Context, transactions []domain.Transaction, outputPath string) error
}

// AnalyzerConfig configures an Analyzer. Paths is required; a nil
// Renderer skips chart generation entirely.
type AnalyzerConfig struct {
	Paths    *config.Paths
	Logger   *slog.Logger
	Metrics  *infrastructure.PipelineMetrics
	Renderer ChartRenderer
}

// Analyzer computes sales insights from the cleaned dataset and
// delegates dashboard rendering to the chart renderer.
type Analyzer struct {
	paths    *config.Paths
	loader   *Loader
	logger   *slog.Logger
	metrics  *infrastructure.PipelineMetrics
	renderer ChartRenderer
}

// NewAnalyzer creates a new analyzer service
func NewAnalyzer(cfg AnalyzerConfig) (*Analyzer, error) {
	if cfg.Paths == nil {
		return nil, fmt.Errorf("analyzer requires paths")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		paths:    cfg.Paths,
		loader:   NewLoader(logger),
		logger:   logger,
		metrics:  cfg.Metrics,
		renderer: cfg.Renderer,
	}, nil
}

// AnalyzeFile loads the cleaned dataset at inputPath, prints the
// analysis to console, renders the dashboard, and writes the insights
// JSON. Chart failures degrade to a warning; everything else is fatal.
func (a *Analyzer) AnalyzeFile(ctx context.Context, inputPath string, console io.Writer) (*SalesReport, error) {
	if console == nil {
		console = io.Discard
	}

	a.logger.InfoContext(ctx, "Analyzing data", slog.String("path", inputPath))

	if !config.FileExists(inputPath) {
		return nil, apperrors.NewMissingInputError(inputPath, "run the cleaner first to generate cleaned data")
	}

	loaded, err := a.loader.LoadCleanedTransactions(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned data from %s: %w", filepath.Base(inputPath), err)
	}
	infrastructure.RecordRowsRead(ctx, a.metrics, "analyzer", int64(loaded.RowsRead))
	infrastructure.RecordRowsDropped(ctx, a.metrics, "analyzer", "malformed", int64(loaded.MalformedRows))

	if len(loaded.Transactions) == 0 {
		return nil, apperrors.NewValidationError("no transactions to analyze")
	}

	report := a.Analyze(ctx, loaded.Transactions)
	a.WriteReport(console, report)

	if a.renderer != nil {
		if err := a.renderer.RenderDashboard(ctx, loaded.Transactions, a.paths.DashboardPNG); err != nil {
			a.logger.WarnContext(ctx, "Could not create visualizations",
				slog.String("error", err.Error()))
			infrastructure.RecordChartRenderFailure(ctx, a.metrics, "render_error")
		} else {
			report.ChartPath = a.paths.DashboardPNG
			a.logger.InfoContext(ctx, "Visualizations saved",
				slog.String("path", a.paths.DashboardPNG))
		}
	}

	if err := a.WriteInsights(ctx, report); err != nil {
		return report, err
	}

	return report, nil
}

// Analyze computes the sales report from cleaned transactions.
func (a *Analyzer) Analyze(ctx context.Context, transactions []domain.Transaction) *SalesReport {
	report := &SalesReport{
		GeneratedAt:       time.Now().UTC(),
		TotalTransactions: len(transactions),
		TotalSales:        decimal.Zero,
		AverageSale:       decimal.Zero,
	}
	if len(transactions) == 0 {
		return report
	}

	var minDate, maxDate time.Time
	total := decimal.Zero
	for i, tx := range transactions {
		total = total.Add(tx.SalesAmount)
		if i == 0 || tx.TransactionDate.Before(minDate) {
			minDate = tx.TransactionDate
		}
		if i == 0 || tx.TransactionDate.After(maxDate) {
			maxDate = tx.TransactionDate
		}
	}

	report.TotalSales = total
	report.AverageSale = total.Div(decimal.NewFromInt(int64(len(transactions))))
	report.PeriodStart = minDate.Format(domain.DateLayout)
	report.PeriodEnd = maxDate.Format(domain.DateLayout)
	report.Categories = categoryBreakdown(transactions)
	report.States = stateBreakdown(transactions)
	report.Daily = dailyBreakdown(transactions)
	report.TopState = report.States[0]
	report.BestDay = bestDayOf(report.Daily)

	infrastructure.AddSpanEvent(ctx, "report_computed", map[string]interface{}{
		"transactions": report.TotalTransactions,
		"categories":   len(report.Categories),
		"states":       len(report.States),
		"days":         len(report.Daily),
	})
	infrastructure.RecordSalesVolume(ctx, a.metrics, "analyzer", total.InexactFloat64())

	a.logger.InfoContext(ctx, "Computed sales report",
		slog.String("period_start", report.PeriodStart),
		slog.String("period_end", report.PeriodEnd),
		slog.Int("transactions", report.TotalTransactions),
		slog.String("total_sales", report.TotalSales.StringFixed(2)))

	return report
}

// categoryBreakdown aggregates revenue, count and mean per category,
// sorted by revenue descending with category name breaking ties.
func categoryBreakdown(transactions []domain.Transaction) []CategoryRevenue {
	type bucket struct {
		revenue decimal.Decimal
		count   int
	}
	buckets := make(map[domain.ProductCategory]*bucket)
	for _, tx := range transactions {
		b, ok := buckets[tx.ProductCategory]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			buckets[tx.ProductCategory] = b
		}
		b.revenue = b.revenue.Add(tx.SalesAmount)
		b.count++
	}

	entries := make([]CategoryRevenue, 0, len(buckets))
	for category, b := range buckets {
		entries = append(entries, CategoryRevenue{
			Category:     category,
			Revenue:      b.revenue,
			Transactions: b.count,
			AverageValue: b.revenue.Div(decimal.NewFromInt(int64(b.count))),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].Revenue.Cmp(entries[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].Category < entries[j].Category
	})
	return entries
}

// stateBreakdown aggregates revenue per state, sorted descending with
// state name breaking ties.
func stateBreakdown(transactions []domain.Transaction) []StateRevenue {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		totals[tx.State] = totals[tx.State].Add(tx.SalesAmount)
	}

	entries := make([]StateRevenue, 0, len(totals))
	for state, revenue := range totals {
		entries = append(entries, StateRevenue{State: state, Revenue: revenue})
	}

	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].Revenue.Cmp(entries[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].State < entries[j].State
	})
	return entries
}

// dailyBreakdown aggregates revenue per calendar day, chronological.
func dailyBreakdown(transactions []domain.Transaction) []DayRevenue {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		day := tx.TransactionDate.Format(domain.DateLayout)
		totals[day] = totals[day].Add(tx.SalesAmount)
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	entries := make([]DayRevenue, 0, len(days))
	for _, day := range days {
		entries = append(entries, DayRevenue{Day: day, Revenue: totals[day]})
	}
	return entries
}

// bestDayOf picks the day with the highest total; the earliest such day
// wins ties.
func bestDayOf(daily []DayRevenue) DayRevenue {
	best := daily[0]
	for _, d := range daily[1:] {
		if d.Revenue.GreaterThan(best.Revenue) {
			best = d
		}
	}
	return best
}

// WriteReport writes the human-readable analysis to w. The category
// ranking shows at most five entries.
func (a *Analyzer) WriteReport(w io.Writer, report *SalesReport) {
	fmt.Fprintf(w, "=== SALES DATA ANALYSIS ===\n")
	fmt.Fprintf(w, "Dataset period: %s to %s\n", report.PeriodStart, report.PeriodEnd)
	fmt.Fprintf(w, "Total transactions: %s\n", formatCount(report.TotalTransactions))
	fmt.Fprintf(w, "Total sales volume: %s\n", formatDollars(report.TotalSales))
	fmt.Fprintf(w, "Average transaction value: $%s\n", report.AverageSale.StringFixed(2))

	fmt.Fprintf(w, "\n🔍 KEY INSIGHTS:\n")

	fmt.Fprintf(w, "\n🏆 Top Product Categories by Revenue:\n")
	for i, c := range report.Categories {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "%d. %s: %s (%d transactions)\n",
			i+1, c.Category, formatDollars(c.Revenue), c.Transactions)
	}

	fmt.Fprintf(w, "\n🗺️  Top State by Sales: %s (%s)\n",
		report.TopState.State, formatDollars(report.TopState.Revenue))
	fmt.Fprintf(w, "\n📈 Best Day: %s (%s)\n",
		report.BestDay.Day, formatDollars(report.BestDay.Revenue))
}

// WriteInsights persists the report as indented JSON beside the chart.
func (a *Analyzer) WriteInsights(ctx context.Context, report *SalesReport) error {
	path := a.paths.InsightsJSON
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create insights file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}

	a.logger.InfoContext(ctx, "Insights saved", slog.String("path", path))
	return nil
}
