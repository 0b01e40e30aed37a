package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	t.Run("basic path resolution", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)
		require.NotNil(t, paths)

		// Verify all paths are absolute
		assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.DataDir), "DataDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.ReportsDir), "ReportsDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.LogsDir), "LogsDir should be absolute")

		// Verify paths are correctly related to executable dir
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "reports"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(paths.DataDir, "backups"), paths.BackupsDir)
	})

	t.Run("consistent calls return same paths", func(t *testing.T) {
		paths1, err1 := GetPaths()
		require.NoError(t, err1)

		paths2, err2 := GetPaths()
		require.NoError(t, err2)

		assert.Equal(t, paths1.ExecutableDir, paths2.ExecutableDir)
		assert.Equal(t, paths1.CleanedDataCSV, paths2.CleanedDataCSV)
	})

	t.Run("well-known pipeline files", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(paths.RawDataCSV, paths.DataDir))
		assert.True(t, strings.HasPrefix(paths.CleanedDataCSV, paths.DataDir))
		assert.True(t, strings.HasPrefix(paths.DashboardPNG, paths.ReportsDir))
		assert.True(t, strings.HasPrefix(paths.InsightsJSON, paths.ReportsDir))

		assert.Equal(t, "sample_sales_data.csv", filepath.Base(paths.RawDataCSV))
		assert.Equal(t, "cleaned_tax_data.csv", filepath.Base(paths.CleanedDataCSV))
		assert.Equal(t, "sales_analysis_dashboard.png", filepath.Base(paths.DashboardPNG))
		assert.Equal(t, "sales_insights.json", filepath.Base(paths.InsightsJSON))
	})
}

func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	paths := &Paths{
		ExecutableDir: tempDir,
		DataDir:       filepath.Join(tempDir, "data"),
		ReportsDir:    filepath.Join(tempDir, "reports"),
		LogsDir:       filepath.Join(tempDir, "logs"),
		BackupsDir:    filepath.Join(tempDir, "data", "backups"),
	}

	t.Run("creates all directories", func(t *testing.T) {
		err := paths.EnsureDirectories()
		require.NoError(t, err)

		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.ReportsDir)
		assert.DirExists(t, paths.LogsDir)
		assert.DirExists(t, paths.BackupsDir)
	})

	t.Run("idempotent - can be called multiple times", func(t *testing.T) {
		require.NoError(t, paths.EnsureDirectories())
		require.NoError(t, paths.EnsureDirectories())
		assert.DirExists(t, paths.BackupsDir)
	})
}

func TestPathHelpers(t *testing.T) {
	paths := &Paths{
		ExecutableDir: "/app",
		DataDir:       "/app/data",
		ReportsDir:    "/app/reports",
		LogsDir:       "/app/logs",
		BackupsDir:    "/app/data/backups",
	}

	assert.Equal(t, filepath.Join("/app", "config.yaml"), paths.GetRelativePath("config.yaml"))
	assert.Equal(t, filepath.Join("/app/data", "raw.csv"), paths.GetDataPath("raw.csv"))
	assert.Equal(t, filepath.Join("/app/reports", "out.png"), paths.GetReportPath("out.png"))
	assert.Equal(t, filepath.Join("/app/logs", "app.log"), paths.GetLogPath("app.log"))
	assert.Equal(t, filepath.Join("/app/logs", "cleaner_trace.log"), paths.GetTraceLogPath("cleaner"))
	assert.Equal(t, filepath.Join("/app/logs", "analyzer_metrics.prom"), paths.GetMetricsSnapshotPath("analyzer"))
}

func TestGetBackupPath(t *testing.T) {
	paths := &Paths{BackupsDir: "/app/data/backups"}

	at := time.Date(2024, 1, 19, 14, 30, 5, 0, time.UTC)
	got := paths.GetBackupPath("cleaned_tax_data.csv", at)

	assert.Equal(t, filepath.Join("/app/data/backups", "20240119_143005_cleaned_tax_data.csv"), got)
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	missing := filepath.Join(tempDir, "missing.csv")
	assert.False(t, FileExists(missing))

	present := filepath.Join(tempDir, "present.csv")
	require.NoError(t, os.WriteFile(present, []byte("a,b\n"), 0644))
	assert.True(t, FileExists(present))
}
