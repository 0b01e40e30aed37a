package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "salespipe/internal/errors"
	"salespipe/internal/validation"
	"salespipe/pkg/contracts/domain"
)

// Loader reads raw and cleaned sales datasets from disk. Structural
// problems (missing file, missing columns) are returned as errors;
// individual bad rows are dropped and counted, never fatal.
type Loader struct {
	logger  *slog.Logger
	records *validation.RecordValidator
}

// NewLoader creates a new dataset loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		records: validation.NewRecordValidator(logger),
	}
}

// RawLoadResult carries the raw rows plus per-load accounting.
type RawLoadResult struct {
	Records       []domain.RawRecord
	RowsRead      int
	MalformedRows int
}

// CleanedLoadResult carries parsed transactions plus per-load accounting.
type CleanedLoadResult struct {
	Transactions  []domain.Transaction
	RowsRead      int
	MalformedRows int
}

// LoadRawRecords reads the raw sales feed at path. The format is chosen
// by extension (.csv or .xlsx/.xls). Rows wider than the header are
// dropped as malformed; rows narrower than the header are padded with
// empty fields so the cleaning steps can repair them.
func (l *Loader) LoadRawRecords(ctx context.Context, path string) (*RawLoadResult, error) {
	rows, err := l.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s contains no header row", filepath.Base(path))
	}

	header := normalizeHeader(rows[0])
	cols, err := findRawColumns(header)
	if err != nil {
		return nil, err
	}

	result := &RawLoadResult{}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		result.RowsRead++
		if len(row) > len(header) {
			result.MalformedRows++
			l.logger.DebugContext(ctx, "Dropping row wider than header",
				slog.Int("fields", len(row)),
				slog.Int("expected", len(header)))
			continue
		}
		row = padRow(row, len(header))
		result.Records = append(result.Records, domain.RawRecord{
			TransactionID:   fieldAt(row, cols, "transaction_id"),
			TransactionDate: fieldAt(row, cols, "transaction_date"),
			ProductID:       fieldAt(row, cols, "product_id"),
			ProductName:     fieldAt(row, cols, "product_name"),
			SalesAmount:     fieldAt(row, cols, "sales_amount"),
			State:           fieldAt(row, cols, "state"),
			CustomerID:      fieldAt(row, cols, "customer_id"),
		})
	}

	l.logger.InfoContext(ctx, "Loaded raw sales data",
		slog.String("path", path),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("malformed_rows", result.MalformedRows))

	return result, nil
}

// LoadCleanedTransactions reads a cleaned dataset at path. All eleven
// cleaned columns must be present; rows whose fields fail to parse or
// validate are dropped and counted as malformed.
func (l *Loader) LoadCleanedTransactions(ctx context.Context, path string) (*CleanedLoadResult, error) {
	rows, err := l.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s contains no header row", filepath.Base(path))
	}

	header := normalizeHeader(rows[0])
	cols, err := findCleanedColumns(header)
	if err != nil {
		return nil, err
	}

	result := &CleanedLoadResult{}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		result.RowsRead++
		if len(row) > len(header) {
			result.MalformedRows++
			continue
		}
		row = padRow(row, len(header))

		tx, err := l.parseCleanedRow(row, cols)
		if err != nil {
			result.MalformedRows++
			l.logger.DebugContext(ctx, "Dropping malformed cleaned row",
				slog.Int("row", result.RowsRead),
				slog.String("error", err.Error()))
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	l.logger.InfoContext(ctx, "Loaded cleaned transactions",
		slog.String("path", path),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("malformed_rows", result.MalformedRows))

	return result, nil
}

// parseCleanedRow converts one cleaned CSV row into a Transaction.
func (l *Loader) parseCleanedRow(row []string, cols map[string]int) (*domain.Transaction, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(fieldAt(row, cols, "transaction_id")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction_id: %w", err)
	}

	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(fieldAt(row, cols, "transaction_date")))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction_date: %w", err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fieldAt(row, cols, "sales_amount")))
	if err != nil {
		return nil, fmt.Errorf("invalid sales_amount: %w", err)
	}

	customerID, err := strconv.ParseInt(strings.TrimSpace(fieldAt(row, cols, "customer_id")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}

	quarter, err := strconv.Atoi(strings.TrimSpace(fieldAt(row, cols, "transaction_quarter")))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction_quarter: %w", err)
	}

	tx := &domain.Transaction{
		TransactionID:      id,
		TransactionDate:    date,
		ProductID:          fieldAt(row, cols, "product_id"),
		ProductName:        fieldAt(row, cols, "product_name"),
		SalesAmount:        amount,
		State:              fieldAt(row, cols, "state"),
		CustomerID:         customerID,
		TransactionMonth:   strings.TrimSpace(fieldAt(row, cols, "transaction_month")),
		TransactionQuarter: quarter,
		ProductCategory:    domain.ProductCategory(strings.TrimSpace(fieldAt(row, cols, "product_category"))),
		TaxJurisdiction:    domain.TaxJurisdiction(strings.TrimSpace(fieldAt(row, cols, "tax_jurisdiction"))),
	}

	if err := l.records.ValidateTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// readRows reads all rows of a tabular file, dispatching on extension.
func (l *Loader) readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRows(path)
	case ".xlsx", ".xls":
		return readExcelRows(path)
	default:
		return nil, fmt.Errorf("unsupported input format %s (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// readCSVRows reads an entire CSV file. Rows may have varying widths;
// the caller reconciles them against the header.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readExcelRows reads the data sheet of an Excel workbook. The sheet
// holding the header row wins; otherwise the first sheet is used.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for _, row := range rows {
			rowText := strings.ToLower(strings.Join(row, " "))
			if strings.Contains(rowText, "transaction_id") {
				return rows, nil
			}
		}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// findRawColumns maps the raw column set to header positions. Only
// product_id may be absent; records without one are categorized as
// UNCATEGORIZED downstream.
func findRawColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	var missing []string
	for _, name := range domain.RawColumns {
		if name == "product_id" {
			continue
		}
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("input file is missing required columns: %s", strings.Join(missing, ", ")))
	}
	return cols, nil
}

// findCleanedColumns maps the cleaned column set to header positions.
// Every cleaned column is required.
func findCleanedColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	var missing []string
	for _, name := range domain.CleanedColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cleaned file is missing required columns: %s", strings.Join(missing, ", ")))
	}
	return cols, nil
}

// normalizeHeader lowercases and trims header cells and strips a UTF-8
// BOM from the first one.
func normalizeHeader(header []string) []string {
	normalized := make([]string, len(header))
	for i, cell := range header {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	return normalized
}

// fieldAt returns the row value of a named column, or "" if the column
// is absent from the file.
func fieldAt(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// padRow extends a short row with empty fields up to width. Excel reads
// drop trailing empty cells, so short rows are expected there.
func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

// isBlankRow reports whether every cell of a row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
