package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Manager runs the registered steps sequentially over one input table.
type Manager struct {
	registry *Registry
	tracer   *PipelineTracer
	logger   *slog.Logger
}

// NewManager creates a manager. A nil tracer records nothing; a nil logger
// uses slog.Default().
func NewManager(registry *Registry, tracer *PipelineTracer, logger *slog.Logger) *Manager {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}
}

// Run executes every step in order. The context is checked before each step.
// On failure Run returns the artifacts completed so far together with a
// *StageError naming the failing step; the cleaned table is only present
// when every step succeeded.
func (m *Manager) Run(ctx context.Context, input *table.Table) (*Result, error) {
	if input == nil {
		return nil, apperrors.NewAppValidationError("input table is nil")
	}

	state := NewOperationState(uuid.New().String(), input)
	steps := m.registry.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx = infrastructure.WithRunID(ctx, state.ID)
	ctx, runSpan := m.tracer.TraceRun(ctx, state.ID, input.NumRows())
	m.logOperationStart(ctx, state.ID, input.NumRows(), len(steps))
	state.Start()

	var runErr error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			runErr = &StageError{StageID: step.ID(), Err: err}
			m.skipRemaining(state, steps, step.ID(), "run cancelled")
			break
		}
		if err := m.executeStage(ctx, state, step); err != nil {
			runErr = &StageError{StageID: step.ID(), Err: err}
			m.skipRemaining(state, steps, step.ID(), fmt.Sprintf("stage %s failed", step.ID()))
			break
		}
	}

	switch {
	case runErr == nil:
		state.SetArtifact(domain.ArtifactCleanedTable, state.Table())
		state.Complete()
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}

	result := m.buildResult(state, steps, runErr)
	m.tracer.RecordRunCompletion(ctx, runSpan, state.Status, len(result.order), runErr)

	if runErr != nil {
		m.logOperationError(ctx, state.ID, runErr)
		return result, runErr
	}
	m.logOperationComplete(ctx, state.ID, result.Duration, string(state.Status))
	return result, nil
}

func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	m.logStageStart(ctx, state.ID, step.ID())

	stageCtx, span := m.tracer.TraceStage(ctx, state.ID, step.ID())
	published := state.artifactCount()
	stepState.Start(state.rows())
	start := time.Now()

	err := step.Execute(stageCtx, state)
	duration := time.Since(start)

	rows := state.rows()
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, rows, err)

	if err != nil {
		stepState.Fail(err)
		m.logStageError(ctx, state.ID, step.ID(), err)
		return err
	}

	stepState.Complete(rows, state.artifactsSince(published))
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// skipRemaining marks every step after failedID as skipped.
func (m *Manager) skipRemaining(state *OperationState, steps []Step, failedID, reason string) {
	after := false
	for _, step := range steps {
		if after {
			state.GetStage(step.ID()).Skip(reason)
			continue
		}
		if step.ID() == failedID {
			after = true
			if st := state.GetStage(step.ID()); st.GetStatus() == StepStatusPending {
				st.Skip(reason)
			}
		}
	}
}

func (m *Manager) buildResult(state *OperationState, steps []Step, runErr error) *Result {
	artifacts, order := state.snapshot()

	result := &Result{
		RunID:     state.ID,
		InputRows: state.Input().NumRows(),
		artifacts: artifacts,
		order:     order,
	}
	if state.EndTime != nil {
		result.Duration = state.EndTime.Sub(state.StartTime)
	}
	if id, ok := FailedStage(runErr); ok {
		result.FailedStage = id
	}

	for _, step := range steps {
		result.Steps = append(result.Steps, state.GetStage(step.ID()).summary())
	}
	return result
}
