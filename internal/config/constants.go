package config

// Application constants for the salespipe system
const (
	AppName    = "salespipe"
	AppVersion = "1.0.0"

	// Well-known pipeline files
	RawDataFileName     = "sample_sales_data.csv"
	CleanedDataFileName = "cleaned_tax_data.csv"
	DashboardFileName   = "sales_analysis_dashboard.png"
	InsightsFileName    = "sales_insights.json"

	// Directories (relative to executable)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"
	DefaultBackupsDir = "backups"

	// Log settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogOutput   = "both"
	DefaultLogFilePath = "logs/app.log"

	// Chart defaults
	DefaultChartWidth  = 1600
	DefaultChartHeight = 1200
	DefaultChartTitle  = "Sales Data Analysis Dashboard"
)
