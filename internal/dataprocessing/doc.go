// Package dataprocessing provides the data stages of the sales pipeline.
// It consolidates loading, cleaning, and analysis functionality into a
// cohesive package that handles the complete lifecycle from raw feed
// ingestion to analytical insights.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Loader: Reads raw (CSV/XLSX) and cleaned datasets from disk
// 2. Cleaner: Repairs nulls, drops bad rows, derives tax-reporting columns
// 3. Analyzer: Computes revenue aggregates and drives the dashboard
//
// # Usage
//
// Cleaning a raw feed:
//
//	cleaner, err := dataprocessing.NewCleaner(dataprocessing.CleanerConfig{
//	    Paths:          paths,
//	    BackupPrevious: true,
//	})
//	result, err := cleaner.CleanFile(ctx, paths.RawDataCSV, paths.CleanedDataCSV)
//
// Analyzing the cleaned dataset:
//
//	analyzer, err := dataprocessing.NewAnalyzer(dataprocessing.AnalyzerConfig{
//	    Paths:    paths,
//	    Renderer: chart.NewRenderer(renderCfg, logger),
//	})
//	report, err := analyzer.AnalyzeFile(ctx, paths.CleanedDataCSV, os.Stdout)
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Raw CSV/XLSX → Loader → RawRecords → Cleaner → Transactions → Analyzer → Report + Dashboard
//
// # Error Handling
//
// Structural failures (missing files, missing columns) return errors;
// a missing input file carries a remediation hint. Individual bad rows
// never fail a run: they are dropped and surface only as counts in
// CleaningStats and the structured log.
package dataprocessing
