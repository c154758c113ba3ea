package operations

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

func (m *Manager) logOperationStart(ctx context.Context, runID string, rows, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", runID),
		slog.Int("input_rows", rows),
		slog.Int("steps", steps))
}

func (m *Manager) logOperationComplete(ctx context.Context, runID string, duration time.Duration, status string) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", runID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

func (m *Manager) logOperationError(ctx context.Context, runID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", runID),
		apperrors.Attr(err))
}

func (m *Manager) logStageStart(ctx context.Context, runID, stageID string) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", runID),
		slog.String("stage", stageID))
}

func (m *Manager) logStageComplete(ctx context.Context, runID, stageID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", runID),
		slog.String("stage", stageID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStageError(ctx context.Context, runID, stageID string, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("operation_id", runID),
		slog.String("stage", stageID),
		apperrors.Attr(err))
}
