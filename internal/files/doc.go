// Package files provides file system operations for the sales pipeline
// directories.
//
// Manager provides basic file management operations such as copying,
// backing up, and ensuring directories exist. Relative paths resolve
// against the pipeline directories (data by default, or the reports/,
// logs/ and backups/ prefixes), so callers can name well-known files
// without carrying absolute paths around.
//
// Example usage:
//
//	manager := files.NewManager(paths)
//
//	// Check if a previous cleaned dataset exists
//	if manager.FileExists("cleaned_tax_data.csv") {
//	    // Back it up before overwriting
//	    backup, err := manager.BackupFile("cleaned_tax_data.csv", time.Now())
//	}
package files
