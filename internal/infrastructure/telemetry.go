package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"salespipe/internal/config"
)

// MeterName is the instrumentation scope for all pipeline telemetry
const MeterName = "salespipe"

// TelemetryProviders holds the OpenTelemetry providers for one stage run.
// Stages are short-lived processes, so instead of serving metrics over
// HTTP the providers collect into a Prometheus registry and write a text
// snapshot at shutdown.
type TelemetryProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	snapshotPath string
	traceFile    *os.File
}

// InitializeTelemetry initializes tracing and metrics for a stage run.
// The component name ("cleaner", "analyzer") selects the trace log and
// metrics snapshot files under logs/. A disabled configuration returns
// working no-op providers so call sites stay uniform.
func InitializeTelemetry(cfg config.TelemetryConfig, component string, paths *config.Paths, logger *slog.Logger) (*TelemetryProviders, error) {
	providers := &TelemetryProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if !cfg.Enabled {
		return providers, nil
	}

	ctx := context.Background()

	res, err := createResource(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := initializeTracing(cfg, component, paths, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, component, paths, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "Telemetry initialized",
		slog.String("component", component),
		slog.String("trace_output", cfg.TraceOutput),
		slog.Bool("metrics_snapshot", cfg.MetricsSnapshot))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(component string) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.component", component),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up span export for the stage run
func initializeTracing(cfg config.TelemetryConfig, component string, paths *config.Paths, res *resource.Resource, providers *TelemetryProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceOutput {
	case "file":
		file, ferr := openLogFile(paths.GetTraceLogPath(component))
		if ferr != nil {
			return fmt.Errorf("failed to open trace log: %w", ferr)
		}
		providers.traceFile = file
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(file),
		)
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		// No exporter - tracing disabled
		return nil
	default:
		return fmt.Errorf("unsupported trace output: %s", cfg.TraceOutput)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics sets up the Prometheus-backed meter provider
func initializeMetrics(cfg config.TelemetryConfig, component string, paths *config.Paths, res *resource.Resource, providers *TelemetryProviders) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	if cfg.MetricsSnapshot {
		providers.snapshotPath = paths.GetMetricsSnapshotPath(component)
	}

	// Set global meter provider
	otel.SetMeterProvider(mp)

	return nil
}

// Shutdown flushes spans, writes the metrics snapshot and releases the
// trace log file. The snapshot is written before the meter provider
// shuts down because the Prometheus reader stops collecting afterwards.
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.snapshotPath != "" && p.Registry != nil {
		if err := prometheus.WriteToTextfile(p.snapshotPath, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics snapshot: %w", err))
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if p.traceFile != nil {
		if err := p.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace log close: %w", err))
		}
		p.traceFile = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// PipelineMetrics holds all pipeline-specific metrics
type PipelineMetrics struct {
	RowsReadTotal    metric.Int64Counter
	RowsWrittenTotal metric.Int64Counter
	RowsDroppedTotal metric.Int64Counter
	NullRepairsTotal metric.Int64Counter

	StageRunsTotal metric.Int64Counter
	StageDuration  metric.Float64Histogram

	SalesVolumeTotal    metric.Float64Counter
	ChartRenderFailures metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline metric instruments
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"pipeline_rows_read_total",
		metric.WithDescription("Total number of input rows read"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"pipeline_rows_written_total",
		metric.WithDescription("Total number of rows written to output"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"pipeline_rows_dropped_total",
		metric.WithDescription("Total number of rows dropped during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	nullRepairs, err := meter.Int64Counter(
		"pipeline_null_repairs_total",
		metric.WithDescription("Total number of null fields repaired with defaults"),
	)
	if err != nil {
		return nil, err
	}

	stageRuns, err := meter.Int64Counter(
		"pipeline_stage_runs_total",
		metric.WithDescription("Total number of stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	salesVolume, err := meter.Float64Counter(
		"pipeline_sales_volume_usd_total",
		metric.WithDescription("Total sales volume processed in USD"),
	)
	if err != nil {
		return nil, err
	}

	renderFailures, err := meter.Int64Counter(
		"pipeline_chart_render_failures_total",
		metric.WithDescription("Total number of dashboard render failures"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsReadTotal:       rowsRead,
		RowsWrittenTotal:    rowsWritten,
		RowsDroppedTotal:    rowsDropped,
		NullRepairsTotal:    nullRepairs,
		StageRunsTotal:      stageRuns,
		StageDuration:       stageDuration,
		SalesVolumeTotal:    salesVolume,
		ChartRenderFailures: renderFailures,
	}, nil
}

// RecordStageMetrics records the outcome of a stage execution
func RecordStageMetrics(ctx context.Context, metrics *PipelineMetrics, stage string, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
		statusAttr,
	}

	metrics.StageRunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRowsRead records input rows read by a stage
func RecordRowsRead(ctx context.Context, metrics *PipelineMetrics, stage string, n int64) {
	if metrics == nil {
		return
	}
	metrics.RowsReadTotal.Add(ctx, n, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRowsWritten records output rows written by a stage
func RecordRowsWritten(ctx context.Context, metrics *PipelineMetrics, stage string, n int64) {
	if metrics == nil {
		return
	}
	metrics.RowsWrittenTotal.Add(ctx, n, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRowsDropped records rows dropped by a stage for a given reason
func RecordRowsDropped(ctx context.Context, metrics *PipelineMetrics, stage, reason string, n int64) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.RowsDroppedTotal.Add(ctx, n, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("reason", reason),
	))
}

// RecordNullRepairs records null fields repaired for a given field
func RecordNullRepairs(ctx context.Context, metrics *PipelineMetrics, stage, field string, n int64) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.NullRepairsTotal.Add(ctx, n, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("field", field),
	))
}

// RecordSalesVolume records sales volume processed by a stage
func RecordSalesVolume(ctx context.Context, metrics *PipelineMetrics, stage string, amount float64) {
	if metrics == nil {
		return
	}
	metrics.SalesVolumeTotal.Add(ctx, amount, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordChartRenderFailure records a dashboard render failure
func RecordChartRenderFailure(ctx context.Context, metrics *PipelineMetrics, reason string) {
	if metrics == nil {
		return
	}
	metrics.ChartRenderFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// TraceIDFromContext extracts the span trace ID for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, anyAttribute(k, v))
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordSpanError records an error on the current span
func RecordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		span.SetAttributes(anyAttribute(k, v))
	}
}

func anyAttribute(k string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(k, val)
	case int:
		return attribute.Int(k, val)
	case int64:
		return attribute.Int64(k, val)
	case float64:
		return attribute.Float64(k, val)
	case bool:
		return attribute.Bool(k, val)
	default:
		return attribute.String(k, fmt.Sprintf("%v", val))
	}
}
