package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the pipeline
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
	BackupsDir    string

	// Well-known pipeline files
	RawDataCSV     string
	CleanedDataCSV string
	DashboardPNG   string
	InsightsJSON   string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// Directory structure:
	// <exe dir>/
	//   ├── data/
	//   │   ├── sample_sales_data.csv   (raw feed, or -sample output)
	//   │   ├── cleaned_tax_data.csv    (cleaner output, analyzer input)
	//   │   └── backups/                (timestamped copies of prior runs)
	//   ├── reports/
	//   │   ├── sales_analysis_dashboard.png
	//   │   └── sales_insights.json
	//   └── logs/                       (app log, trace log, metric snapshots)

	dataDir := filepath.Join(exeDir, DefaultDataDir)
	reportsDir := filepath.Join(exeDir, DefaultReportsDir)

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		LogsDir:       filepath.Join(exeDir, DefaultLogsDir),
		BackupsDir:    filepath.Join(dataDir, DefaultBackupsDir),

		RawDataCSV:     filepath.Join(dataDir, RawDataFileName),
		CleanedDataCSV: filepath.Join(dataDir, CleanedDataFileName),
		DashboardPNG:   filepath.Join(reportsDir, DashboardFileName),
		InsightsJSON:   filepath.Join(reportsDir, InsightsFileName),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.LogsDir,
		p.BackupsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// GetDataPath returns the path for a file in the data directory
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetBackupPath returns the timestamped backup path for a data file
func (p *Paths) GetBackupPath(filename string, at time.Time) string {
	stamped := fmt.Sprintf("%s_%s", at.Format("20060102_150405"), filename)
	return filepath.Join(p.BackupsDir, stamped)
}

// GetTraceLogPath returns the trace log path for a pipeline component
func (p *Paths) GetTraceLogPath(component string) string {
	return filepath.Join(p.LogsDir, fmt.Sprintf("%s_trace.log", component))
}

// GetMetricsSnapshotPath returns the metrics textfile path for a component
func (p *Paths) GetMetricsSnapshotPath(component string) string {
	return filepath.Join(p.LogsDir, fmt.Sprintf("%s_metrics.prom", component))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
			slog.String("backups", p.BackupsDir),
		),
		slog.Group("pipeline_files",
			slog.String("raw_csv", p.RawDataCSV),
			slog.String("cleaned_csv", p.CleanedDataCSV),
			slog.String("dashboard_png", p.DashboardPNG),
			slog.String("insights_json", p.InsightsJSON),
		))
}
