package exporter

import (
	"fmt"

	"salespipe/internal/config"
	"salespipe/pkg/contracts/domain"
)

// TransactionExporter writes cleaned transactions to the dataset that
// feeds the analysis stage
type TransactionExporter struct {
	csvWriter *CSVWriter
}

// NewTransactionExporter creates a new cleaned-data exporter
func NewTransactionExporter(paths *config.Paths) *TransactionExporter {
	return &TransactionExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCleanedData streams cleaned transactions to a CSV file in input
// order, one row per transaction under the canonical header
func (e *TransactionExporter) ExportCleanedData(transactions []domain.Transaction, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, domain.CleanedColumns)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for i, tx := range transactions {
		if err := stream.WriteRecord(transactionToCSVRow(tx)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write transaction %d: %w", i, err)
		}
	}

	return stream.Close()
}

// transactionToCSVRow converts a transaction to its CSV representation,
// column order matching domain.CleanedColumns
func transactionToCSVRow(tx domain.Transaction) []string {
	return []string{
		formatInt(tx.TransactionID),
		tx.TransactionDate.Format(domain.DateLayout),
		tx.ProductID,
		tx.ProductName,
		formatAmount(tx.SalesAmount),
		tx.State,
		formatInt(tx.CustomerID),
		tx.TransactionMonth,
		formatInt(int64(tx.TransactionQuarter)),
		string(tx.ProductCategory),
		string(tx.TaxJurisdiction),
	}
}
