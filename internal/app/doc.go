// Package app wires the shared runtime of a pipeline stage.
//
// Each stage binary (cleaner, analyzer) goes through the same startup
// ritual: resolve the path layout next to the executable, create the
// data/reports/logs directories, load configuration, initialize the
// structured logger and bring up telemetry. Bootstrap performs that
// ritual once and hands back a Stage container; RunStage then wraps
// the stage body in a span with run-id correlation and outcome
// metrics.
//
// Usage:
//
//	stage, err := app.Bootstrap("cleaner", *configFlag)
//	if err != nil {
//		// startup failures predate the logger; print and exit
//	}
//
//	err = stage.RunStage(ctx, "clean_data", func(ctx context.Context) error {
//		// stage body
//		return nil
//	})
//	stage.Shutdown(context.Background())
//
// Shutdown runs before any os.Exit so the telemetry snapshot and log
// file are flushed on failures too; a deferred call would be skipped.
package app
