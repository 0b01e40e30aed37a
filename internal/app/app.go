package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salespipe/internal/config"
	"salespipe/internal/infrastructure"
)

// Stage is the runtime container for one pipeline stage process. It
// carries everything a stage needs at startup so the services below it
// receive their dependencies explicitly.
type Stage struct {
	Component string
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.TelemetryProviders
	Metrics   *infrastructure.PipelineMetrics
}

// Bootstrap performs the startup ritual shared by every stage: resolve
// paths, ensure the directory layout, load configuration, then bring
// up the logger and telemetry for the component ("cleaner" or
// "analyzer").
func Bootstrap(component, configFile string) (*Stage, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The log file is resolved against the executable directory, never
	// the working directory.
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetRelativePath(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, component)

	logger.Info("Stage starting",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, component, paths, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(telemetry.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &Stage{
		Component: component,
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: telemetry,
		Metrics:   metrics,
	}, nil
}

// RunStage runs fn inside a span named after the operation, ensures
// the context carries a run id and records duration and outcome
// metrics for the stage.
func (s *Stage) RunStage(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx = infrastructure.EnsureRunID(ctx)

	ctx, span := s.Telemetry.Tracer.Start(ctx, operation,
		trace.WithAttributes(
			attribute.String("pipeline.stage", s.Component),
			attribute.String("pipeline.run_id", infrastructure.GetRunID(ctx)),
		))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	infrastructure.RecordStageMetrics(ctx, s.Metrics, s.Component, duration, err == nil)

	if err != nil {
		infrastructure.RecordSpanError(ctx, err)
		s.Logger.ErrorContext(ctx, "Stage failed",
			slog.String("operation", operation),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	s.Logger.InfoContext(ctx, "Stage completed",
		slog.String("operation", operation),
		slog.Duration("duration", duration))
	return nil
}

// Shutdown flushes telemetry and releases the log file. Call once at
// process exit.
func (s *Stage) Shutdown(ctx context.Context) {
	if err := s.Telemetry.Shutdown(ctx); err != nil {
		s.Logger.Warn("Telemetry shutdown reported errors", slog.String("error", err.Error()))
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		s.Logger.Warn("Failed to close log file", slog.String("error", err.Error()))
	}
}
