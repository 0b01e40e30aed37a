package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salespipe/internal/config"
	apperrors "salespipe/internal/errors"
	"salespipe/internal/exporter"
	"salespipe/internal/files"
	"salespipe/internal/infrastructure"
	"salespipe/internal/validation"
	"salespipe/pkg/contracts/domain"
)

// CleaningStats tracks row accounting across the cleaning steps. Every
// dropped row lands in exactly one bucket.
type CleaningStats struct {
	RowsRead          int `json:"rows_read"`
	MalformedRows     int `json:"malformed_rows"`
	AmountRepairs     int `json:"amount_repairs"`
	StateRepairs      int `json:"state_repairs"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	NegativesRemoved  int `json:"negatives_removed"`
	BadDatesRemoved   int `json:"bad_dates_removed"`
	RowsWritten       int `json:"rows_written"`
}

// TotalDropped returns the number of rows that did not survive cleaning.
func (s CleaningStats) TotalDropped() int {
	return s.MalformedRows + s.DuplicatesRemoved + s.NegativesRemoved + s.BadDatesRemoved
}

// GroupSummary is one row of the console summary tables: total and
// count of sales for one grouping key.
type GroupSummary struct {
	Key   string
	Total decimal.Decimal
	Count int
}

// CleanResult carries the outcome of one cleaning run. RawSample holds
// the first few input rows as read, so callers can echo what the feed
// looked like before cleaning.
type CleanResult struct {
	Transactions []domain.Transaction
	Stats        CleaningStats
	RawSample    []domain.RawRecord
	InputPath    string
	OutputPath   string
	BackupPath   string
}

// rawSampleSize is how many input rows CleanFile keeps for display.
const rawSampleSize = 3

// CleanerConfig configures a Cleaner. Paths is required; a nil Logger
// falls back to slog.Default and nil Metrics disables recording.
type CleanerConfig struct {
	Paths          *config.Paths
	BackupPrevious bool
	Logger         *slog.Logger
	Metrics        *infrastructure.PipelineMetrics
}

// Cleaner turns the raw sales feed into the cleaned dataset: null
// repair, exact-duplicate removal, negative-amount and bad-date drops,
// then the derived tax-reporting columns.
type Cleaner struct {
	paths          *config.Paths
	backupPrevious bool
	loader         *Loader
	exporter       *exporter.TransactionExporter
	fileValidator  *validation.FileValidator
	manager        *files.Manager
	logger         *slog.Logger
	metrics        *infrastructure.PipelineMetrics
}

// NewCleaner creates a new cleaner service
func NewCleaner(cfg CleanerConfig) (*Cleaner, error) {
	if cfg.Paths == nil {
		return nil, fmt.Errorf("cleaner requires paths")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		paths:          cfg.Paths,
		backupPrevious: cfg.BackupPrevious,
		loader:         NewLoader(logger),
		exporter:       exporter.NewTransactionExporter(cfg.Paths),
		fileValidator:  validation.NewFileValidator(logger),
		manager:        files.NewManager(cfg.Paths),
		logger:         logger,
		metrics:        cfg.Metrics,
	}, nil
}

// CleanFile runs the full cleaning pass: load the raw feed at
// inputPath, apply the cleaning steps, and write the cleaned dataset to
// outputPath. A missing input file is a not-found error with a
// remediation hint; bad rows never fail the run.
func (c *Cleaner) CleanFile(ctx context.Context, inputPath, outputPath string) (*CleanResult, error) {
	c.logger.InfoContext(ctx, "Reading raw sales data", slog.String("path", inputPath))

	if !config.FileExists(inputPath) {
		return nil, apperrors.NewMissingInputError(inputPath, "pass -sample to generate demo data")
	}
	if err := c.fileValidator.ValidateDataFile(inputPath); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	raw, err := c.loader.LoadRawRecords(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load raw data from %s: %w", filepath.Base(inputPath), err)
	}
	infrastructure.RecordRowsRead(ctx, c.metrics, "cleaner", int64(raw.RowsRead))

	transactions, stats := c.Clean(ctx, raw.Records)
	stats.RowsRead = raw.RowsRead
	stats.MalformedRows += raw.MalformedRows

	sample := raw.Records
	if len(sample) > rawSampleSize {
		sample = sample[:rawSampleSize]
	}

	result := &CleanResult{
		Transactions: transactions,
		Stats:        stats,
		RawSample:    sample,
		InputPath:    inputPath,
		OutputPath:   outputPath,
	}

	if c.backupPrevious && config.FileExists(outputPath) {
		backupPath, err := c.manager.BackupFile(outputPath, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to back up previous output: %w", err)
		}
		result.BackupPath = backupPath
		if backups, err := c.manager.ListBackups(filepath.Base(outputPath)); err == nil {
			c.logger.DebugContext(ctx, "Retained backups",
				slog.String("file", filepath.Base(outputPath)),
				slog.Int("count", len(backups)))
		}
	}

	if err := c.exporter.ExportCleanedData(transactions, outputPath); err != nil {
		return nil, fmt.Errorf("failed to write cleaned data: %w", err)
	}

	c.recordStats(ctx, stats, transactions)

	sizeBytes, _ := c.manager.GetFileSize(outputPath)
	c.logger.InfoContext(ctx, "Cleaned data saved",
		slog.String("path", outputPath),
		slog.Int("rows_written", stats.RowsWritten),
		slog.Int("rows_dropped", stats.TotalDropped()),
		slog.Int64("size_bytes", sizeBytes))

	return result, nil
}

// Clean applies the cleaning steps to raw records, in order: null
// repair, exact-duplicate removal, amount parsing, negative filter,
// date parsing, id parsing, then the derived columns. It accounts only
// for the transform steps; file-level counts are set by CleanFile.
func (c *Cleaner) Clean(ctx context.Context, records []domain.RawRecord) ([]domain.Transaction, CleaningStats) {
	var stats CleaningStats

	// Step 1: repair nulls
	repaired := make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.SalesAmount) == "" {
			r.SalesAmount = "0"
			stats.AmountRepairs++
		}
		if strings.TrimSpace(r.State) == "" {
			r.State = domain.UnknownState
			stats.StateRepairs++
		}
		repaired = append(repaired, r)
	}

	// Step 2: drop exact duplicates, first occurrence wins
	seen := make(map[string]bool, len(repaired))
	deduped := make([]domain.RawRecord, 0, len(repaired))
	for _, r := range repaired {
		key := r.Key()
		if seen[key] {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}

	// Steps 3-7: per-row parses and derived columns
	transactions := make([]domain.Transaction, 0, len(deduped))
	for _, r := range deduped {
		amount, err := decimal.NewFromString(strings.TrimSpace(r.SalesAmount))
		if err != nil {
			stats.MalformedRows++
			c.logger.DebugContext(ctx, "Dropping row with unparseable amount",
				slog.String("transaction_id", r.TransactionID),
				slog.String("sales_amount", r.SalesAmount))
			continue
		}
		if amount.IsNegative() {
			stats.NegativesRemoved++
			continue
		}

		date, err := ParseTransactionDate(r.TransactionDate)
		if err != nil {
			stats.BadDatesRemoved++
			c.logger.DebugContext(ctx, "Dropping row with unparseable date",
				slog.String("transaction_id", r.TransactionID),
				slog.String("transaction_date", r.TransactionDate))
			continue
		}

		id, err := parseIntField(r.TransactionID)
		if err != nil {
			stats.MalformedRows++
			c.logger.DebugContext(ctx, "Dropping row with invalid transaction_id",
				slog.String("transaction_id", r.TransactionID))
			continue
		}
		customerID, err := parseIntField(r.CustomerID)
		if err != nil {
			stats.MalformedRows++
			c.logger.DebugContext(ctx, "Dropping row with invalid customer_id",
				slog.String("transaction_id", r.TransactionID),
				slog.String("customer_id", r.CustomerID))
			continue
		}

		category := domain.CategorizeProduct(strings.TrimSpace(r.ProductID))
		transactions = append(transactions, domain.Transaction{
			TransactionID:      id,
			TransactionDate:    date,
			ProductID:          r.ProductID,
			ProductName:        r.ProductName,
			SalesAmount:        amount,
			State:              r.State,
			CustomerID:         customerID,
			TransactionMonth:   domain.MonthBucket(date),
			TransactionQuarter: domain.QuarterOf(date),
			ProductCategory:    category,
			TaxJurisdiction:    domain.JurisdictionFor(r.State, category),
		})
	}
	stats.RowsWritten = len(transactions)

	infrastructure.AddSpanEvent(ctx, "dataset_cleaned", map[string]interface{}{
		"rows_in":            len(records),
		"rows_out":           len(transactions),
		"duplicates_removed": stats.DuplicatesRemoved,
		"negatives_removed":  stats.NegativesRemoved,
		"bad_dates_removed":  stats.BadDatesRemoved,
	})

	c.logger.InfoContext(ctx, "Transformed data",
		slog.Int("rows_in", len(records)),
		slog.Int("rows_out", len(transactions)),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("negatives_removed", stats.NegativesRemoved),
		slog.Int("bad_dates_removed", stats.BadDatesRemoved),
		slog.Int("amount_repairs", stats.AmountRepairs),
		slog.Int("state_repairs", stats.StateRepairs))

	return transactions, stats
}

// SummarizeByState aggregates sales total and count per state, keys
// ascending.
func SummarizeByState(transactions []domain.Transaction) []GroupSummary {
	return summarize(transactions, func(tx domain.Transaction) string { return tx.State })
}

// SummarizeByCategory aggregates sales total and count per product
// category, keys ascending.
func SummarizeByCategory(transactions []domain.Transaction) []GroupSummary {
	return summarize(transactions, func(tx domain.Transaction) string { return string(tx.ProductCategory) })
}

func summarize(transactions []domain.Transaction, keyOf func(domain.Transaction) string) []GroupSummary {
	groups := make(map[string]*GroupSummary)
	for _, tx := range transactions {
		key := keyOf(tx)
		g, ok := groups[key]
		if !ok {
			g = &GroupSummary{Key: key, Total: decimal.Zero}
			groups[key] = g
		}
		g.Total = g.Total.Add(tx.SalesAmount)
		g.Count++
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]GroupSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, *groups[key])
	}
	return summaries
}

// WriteSummary writes the human-readable cleaning summary. The state
// table shows at most five states; the category table is complete.
func (c *Cleaner) WriteSummary(w io.Writer, result *CleanResult) {
	stats := result.Stats
	total := decimal.Zero
	for _, tx := range result.Transactions {
		total = total.Add(tx.SalesAmount)
	}

	fmt.Fprintf(w, "\n=== DATA CLEANING SUMMARY ===\n")
	fmt.Fprintf(w, "Final dataset shape: (%d, %d)\n", stats.RowsWritten, len(domain.CleanedColumns))
	fmt.Fprintf(w, "Total sales amount: %s\n", formatDollars(total))
	fmt.Fprintf(w, "Rows read: %d\n", stats.RowsRead)
	fmt.Fprintf(w, "Null repairs: %d (sales_amount: %d, state: %d)\n",
		stats.AmountRepairs+stats.StateRepairs, stats.AmountRepairs, stats.StateRepairs)
	fmt.Fprintf(w, "Duplicates removed: %d\n", stats.DuplicatesRemoved)
	fmt.Fprintf(w, "Negative amounts removed: %d\n", stats.NegativesRemoved)
	fmt.Fprintf(w, "Unparseable dates removed: %d\n", stats.BadDatesRemoved)
	fmt.Fprintf(w, "Malformed rows removed: %d\n", stats.MalformedRows)

	fmt.Fprintf(w, "\n📊 Sales by State:\n")
	states := SummarizeByState(result.Transactions)
	for i, g := range states {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "  %s: %s (%d transactions)\n", g.Key, formatDollars(g.Total), g.Count)
	}

	fmt.Fprintf(w, "\n📦 Sales by Category:\n")
	for _, g := range SummarizeByCategory(result.Transactions) {
		fmt.Fprintf(w, "  %s: %s (%d transactions)\n", g.Key, formatDollars(g.Total), g.Count)
	}
}

// recordStats pushes the cleaning counters into the pipeline metrics.
func (c *Cleaner) recordStats(ctx context.Context, stats CleaningStats, transactions []domain.Transaction) {
	infrastructure.RecordNullRepairs(ctx, c.metrics, "cleaner", "sales_amount", int64(stats.AmountRepairs))
	infrastructure.RecordNullRepairs(ctx, c.metrics, "cleaner", "state", int64(stats.StateRepairs))
	infrastructure.RecordRowsDropped(ctx, c.metrics, "cleaner", "duplicate", int64(stats.DuplicatesRemoved))
	infrastructure.RecordRowsDropped(ctx, c.metrics, "cleaner", "negative_amount", int64(stats.NegativesRemoved))
	infrastructure.RecordRowsDropped(ctx, c.metrics, "cleaner", "bad_date", int64(stats.BadDatesRemoved))
	infrastructure.RecordRowsDropped(ctx, c.metrics, "cleaner", "malformed", int64(stats.MalformedRows))
	infrastructure.RecordRowsWritten(ctx, c.metrics, "cleaner", int64(stats.RowsWritten))

	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.SalesAmount)
	}
	infrastructure.RecordSalesVolume(ctx, c.metrics, "cleaner", total.InexactFloat64())
}
