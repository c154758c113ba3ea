package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
)

const (
	TracerName = "bankprep.pipeline"
)

// PipelineTracer provides OpenTelemetry instrumentation for pipeline runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineTracer creates a tracer bound to the given providers.
func NewPipelineTracer(providers *infrastructure.OTelProviders) (*PipelineTracer, error) {
	if providers == nil {
		return NewNoopTracer(), nil
	}

	meter := providers.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(TracerName)
	}
	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &PipelineTracer{tracer: tracer, metrics: metrics}, nil
}

// NewTracer builds a PipelineTracer from an explicit tracer and metrics.
func NewTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *PipelineTracer {
	return &PipelineTracer{tracer: tracer, metrics: metrics}
}

// NewNoopTracer returns a tracer that records nothing beyond the global
// tracer provider.
func NewNoopTracer() *PipelineTracer {
	return &PipelineTracer{tracer: otel.Tracer(TracerName)}
}

// TraceRun creates the root span of a pipeline run.
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID string, inputRows int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.Int("pipeline.input_rows", inputRows),
		),
	)
}

// TraceStage creates a span for one stage.
func (pt *PipelineTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.stage."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.String("pipeline.stage", stageID),
		),
	)
}

// RecordStageCompletion closes a stage span and records its metrics.
func (pt *PipelineTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, duration time.Duration, rows int, err error) {
	span.SetAttributes(
		attribute.Int64("pipeline.stage.duration_ms", duration.Milliseconds()),
		attribute.Int("pipeline.stage.rows", rows),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.type", infrastructure.ErrorType(err)))
	} else {
		span.SetStatus(codes.Ok, "stage completed")
	}
	span.End()

	pt.metrics.RecordStage(ctx, stageID, duration, rows, err)
}

// RecordRunCompletion closes the run span and counts the run.
func (pt *PipelineTracer) RecordRunCompletion(ctx context.Context, span trace.Span, status OperationStatus, artifacts int, err error) {
	span.SetAttributes(
		attribute.String("pipeline.status", string(status)),
		attribute.Int("pipeline.artifacts", artifacts),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()

	pt.metrics.RecordRun(ctx, string(status))
}

// RecordRepair counts values replaced by the repair stage.
func (pt *PipelineTracer) RecordRepair(ctx context.Context, column string, replaced int) {
	pt.metrics.RecordRepair(ctx, column, replaced)
}
