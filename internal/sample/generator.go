// Package sample generates the demonstration sales feed so the
// pipeline can run end to end without real data.
package sample

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"salespipe/internal/config"
	"salespipe/internal/exporter"
	"salespipe/pkg/contracts/domain"
)

// rawRows is the demonstration dataset: five states, four product
// categories, a repeated product and five days of January 2024. Small
// enough to eyeball in the console, rich enough to light up every
// panel of the dashboard.
var rawRows = [][]string{
	{"1001", "2024-01-15", "ELE-1001", "Smartphone", "799.99", "CA", "201"},
	{"1002", "2024-01-15", "CLO-2001", "T-Shirt", "29.99", "NY", "202"},
	{"1003", "2024-01-16", "ELE-1002", "Laptop", "1299.99", "TX", "203"},
	{"1004", "2024-01-17", "GRO-3001", "Apples", "5.99", "CA", "204"},
	{"1005", "2024-01-18", "ELE-1001", "Smartphone", "799.99", "AZ", "205"},
	{"1006", "2024-01-18", "OTHER-999", "Misc Item", "15.50", "NY", "206"},
	{"1007", "2024-01-19", "ELE-1003", "Tablet", "459.99", "CA", "207"},
}

// Records returns a copy of the demonstration rows in raw column
// order. Callers may mutate the result freely.
func Records() [][]string {
	rows := make([][]string, len(rawRows))
	for i, row := range rawRows {
		rows[i] = append([]string(nil), row...)
	}
	return rows
}

// Generator writes the demonstration sales feed to the pipeline's data
// directory.
type Generator struct {
	paths  *config.Paths
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewGenerator creates a sample data generator.
func NewGenerator(paths *config.Paths, logger *slog.Logger) (*Generator, error) {
	if paths == nil {
		return nil, fmt.Errorf("sample generator requires paths")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		paths:  paths,
		writer: exporter.NewCSVWriter(paths),
		logger: logger,
	}, nil
}

// Generate writes the demonstration dataset as CSV plus a matching
// XLSX workbook and returns the CSV path for the cleaning stage.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	csvPath := g.paths.RawDataCSV
	if err := g.WriteCSV(ctx, csvPath); err != nil {
		return "", err
	}

	xlsxPath := strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
	if err := g.WriteXLSX(ctx, xlsxPath); err != nil {
		return "", err
	}
	return csvPath, nil
}

// WriteCSV writes the demonstration rows to path under the raw header.
func (g *Generator) WriteCSV(ctx context.Context, path string) error {
	if err := g.writer.WriteSimpleCSV(path, domain.RawColumns, Records()); err != nil {
		return fmt.Errorf("failed to write sample data: %w", err)
	}

	g.logger.InfoContext(ctx, "Sample data generated",
		slog.String("path", path),
		slog.Int("rows", len(rawRows)))
	return nil
}

// WriteXLSX writes the same rows as a single-sheet workbook.
func (g *Generator) WriteXLSX(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	if err := writeSheetRow(book, sheet, 1, domain.RawColumns); err != nil {
		return err
	}
	for i, row := range rawRows {
		if err := writeSheetRow(book, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save sample workbook: %w", err)
	}

	g.logger.InfoContext(ctx, "Sample workbook generated",
		slog.String("path", path),
		slog.Int("rows", len(rawRows)))
	return nil
}

func writeSheetRow(book *excelize.File, sheet string, row int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}

	values := make([]interface{}, len(fields))
	for i, field := range fields {
		values[i] = field
	}
	if err := book.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
