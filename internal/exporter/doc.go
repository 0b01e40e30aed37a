// Package exporter provides CSV export functionality for the sales
// pipeline.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// TransactionExporter: Writes the cleaned transaction dataset that the
// analysis stage consumes.
//
// Example usage:
//
//	exp := exporter.NewTransactionExporter(paths)
//	err := exp.ExportCleanedData(transactions, paths.CleanedDataCSV)
package exporter
