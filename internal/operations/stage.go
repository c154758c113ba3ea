package operations

import (
	"context"
	"sync"
	"time"

	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Step is one stage of the cleaning pipeline. Execute reads the working
// table from state and publishes its replacement table and artifacts back
// into it.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, state *OperationState) error
}

// StepStatus is where a step is in its lifecycle.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState tracks one step of a run. Rows and artifacts are filled in by
// the manager around Execute.
type StepState struct {
	mu sync.RWMutex

	ID        string
	Name      string
	Status    StepStatus
	Started   time.Time
	Ended     time.Time
	Message   string
	Err       error
	RowsIn    int
	RowsOut   int
	Artifacts []domain.ArtifactName
}

func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start moves the step to active with rowsIn rows in the working table.
func (s *StepState) Start(rowsIn int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StepStatusActive
	s.Started = time.Now()
	s.RowsIn = rowsIn
}

// Complete records a successful step, its output row count and the
// artifacts it published.
func (s *StepState) Complete(rowsOut int, artifacts []domain.ArtifactName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(StepStatusCompleted, "")
	s.RowsOut = rowsOut
	s.Artifacts = artifacts
}

func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.end(StepStatusFailed, msg)
	s.Err = err
}

// Skip marks a step that never ran.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(StepStatusSkipped, reason)
}

// end must be called with mu held.
func (s *StepState) end(status StepStatus, msg string) {
	s.Status = status
	s.Ended = time.Now()
	s.Message = msg
}

func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration is zero for a step that never started and keeps growing while
// it is active.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.Started.IsZero():
		return 0
	case s.Ended.IsZero():
		return time.Since(s.Started)
	default:
		return s.Ended.Sub(s.Started)
	}
}

// summary freezes the state for a Result.
func (s *StepState) summary() StepSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := StepSummary{
		ID:        s.ID,
		Name:      s.Name,
		Status:    s.Status,
		Message:   s.Message,
		RowsIn:    s.RowsIn,
		RowsOut:   s.RowsOut,
		Artifacts: append([]domain.ArtifactName(nil), s.Artifacts...),
	}
	if !s.Started.IsZero() && !s.Ended.IsZero() {
		out.Duration = s.Ended.Sub(s.Started)
	}
	return out
}

// BaseStage gives a Step its ID and Name.
type BaseStage struct {
	id   string
	name string
}

func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}
