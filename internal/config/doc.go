// Package config provides centralized configuration management for the
// salespipe system. It handles loading configuration from multiple
// sources, validation, and a type-safe API for accessing configuration
// values throughout the pipeline.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// Every value has a working default, so both pipeline stages run with no
// environment and no config file at all.
//
// # Environment Variables
//
// All environment variables follow the pattern SALESPIPE_* for
// namespacing:
//
//	SALESPIPE_LOGGING_LEVEL=debug
//	SALESPIPE_LOGGING_OUTPUT=console
//	SALESPIPE_PIPELINE_INPUT_FILE=data/export.xlsx
//	SALESPIPE_CHART_WIDTH=2000
//	SALESPIPE_TELEMETRY_ENABLED=false
//
// # Path Management
//
// The package provides centralized path management through the Paths
// type, which resolves all file system paths relative to the executable
// location:
//
//	paths, err := config.GetPaths()
//	cleaned := paths.CleanedDataCSV
//	dashboard := paths.DashboardPNG
//
// # Usage
//
// Load configuration at program startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    // fall back to config.Default()
//	}
package config
