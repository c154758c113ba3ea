package infrastructure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

// PipelineMetrics are the instruments a pipeline run records. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	runs          metric.Int64Counter
	stageDuration metric.Float64Histogram
	stageErrors   metric.Int64Counter
	rows          metric.Int64Counter
	repaired      metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var errs []error
	add := func(err error) { errs = append(errs, err) }

	var err error
	m.runs, err = meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Pipeline runs by final status"))
	add(err)
	m.stageDuration, err = meter.Float64Histogram("pipeline_stage_duration_seconds",
		metric.WithDescription("Wall time of each pipeline stage"),
		metric.WithUnit("s"))
	add(err)
	m.stageErrors, err = meter.Int64Counter("pipeline_stage_errors_total",
		metric.WithDescription("Failed pipeline stages by error type"))
	add(err)
	m.rows, err = meter.Int64Counter("pipeline_rows_processed_total",
		metric.WithDescription("Rows in the working table after each stage"))
	add(err)
	m.repaired, err = meter.Int64Counter("pipeline_values_repaired_total",
		metric.WithDescription("Invalid values replaced by validity repair"))
	add(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun counts a finished run.
func (m *PipelineMetrics) RecordRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStage records a stage's duration and output rows. A failed stage is
// also counted under its error type.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stageID string, d time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	stage := attribute.String("stage", stageID)
	status := attribute.String("status", "success")
	if err != nil {
		status = attribute.String("status", "failure")
		m.stageErrors.Add(ctx, 1, metric.WithAttributes(stage, attribute.String("error_type", ErrorType(err))))
	}
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(stage, status))
	if rows > 0 {
		m.rows.Add(ctx, int64(rows), metric.WithAttributes(stage))
	}
}

// RecordRepair counts values replaced in column.
func (m *PipelineMetrics) RecordRepair(ctx context.Context, column string, replaced int) {
	if m == nil || replaced == 0 {
		return
	}
	m.repaired.Add(ctx, int64(replaced), metric.WithAttributes(attribute.String("column", column)))
}

// ErrorType is the label used for err in metrics and spans: the AppError
// type, CANCELED, DEADLINE_EXCEEDED or INTERNAL.
func ErrorType(err error) string {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return string(appErr.Type)
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.Is(err, context.DeadlineExceeded):
		return "DEADLINE_EXCEEDED"
	default:
		return "INTERNAL"
	}
}

// AddSpanEvent adds an event to the span in ctx, if it is recording.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
