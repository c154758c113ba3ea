package operations

import (
	"sync"
	"time"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// OperationStatus represents the overall status of a run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState carries one pipeline run: the current working table and
// the artifacts published so far. Tables and artifacts are immutable once
// stored, so a snapshot taken after a failure stays valid.
type OperationState struct {
	mu        sync.RWMutex
	ID        string
	Status    OperationStatus
	StartTime time.Time
	EndTime   *time.Time
	Steps     map[string]*StepState

	input     *table.Table
	current   *table.Table
	artifacts map[domain.ArtifactName]any
	order     []domain.ArtifactName
	err       error
}

// NewOperationState creates a state for a run over input.
func NewOperationState(id string, input *table.Table) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		input:     input,
		current:   input,
		artifacts: make(map[domain.ArtifactName]any),
	}
}

// Input returns the table the run started from.
func (s *OperationState) Input() *table.Table {
	return s.input
}

// Table returns the current working table.
func (s *OperationState) Table() *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// rows is the working table's row count, 0 once a step cleared it.
func (s *OperationState) rows() int {
	if t := s.Table(); t != nil {
		return t.NumRows()
	}
	return 0
}

// SetTable replaces the working table seen by later steps.
func (s *OperationState) SetTable(t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
}

// SetArtifact publishes a named artifact. Publishing a name twice keeps its
// first position in Artifacts.
func (s *OperationState) SetArtifact(name domain.ArtifactName, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.artifacts[name]; !exists {
		s.order = append(s.order, name)
	}
	s.artifacts[name] = value
}

// Artifact returns a published artifact.
func (s *OperationState) Artifact(name domain.ArtifactName) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.artifacts[name]
	return v, ok
}

func (s *OperationState) artifactCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// artifactsSince lists the artifacts first published after the first n.
func (s *OperationState) artifactsSince(n int) []domain.ArtifactName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n >= len(s.order) {
		return nil
	}
	return append([]domain.ArtifactName(nil), s.order[n:]...)
}

// GetStage returns the state of a Step.
func (s *OperationState) GetStage(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Steps[id]
}

// SetStage registers a Step state.
func (s *OperationState) SetStage(id string, state *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps[id] = state
}

// Start marks the run as running.
func (s *OperationState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = OperationStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed.
func (s *OperationState) Complete() {
	s.finish(OperationStatusCompleted, nil)
}

// Fail marks the run as failed.
func (s *OperationState) Fail(err error) {
	s.finish(OperationStatusFailed, err)
}

// Cancel marks the run as cancelled.
func (s *OperationState) Cancel(err error) {
	s.finish(OperationStatusCancelled, err)
}

func (s *OperationState) finish(status OperationStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = status
	s.err = err
}

// snapshot copies the artifact index so a Result does not alias the state.
func (s *OperationState) snapshot() (map[domain.ArtifactName]any, []domain.ArtifactName) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifacts := make(map[domain.ArtifactName]any, len(s.artifacts))
	for k, v := range s.artifacts {
		artifacts[k] = v
	}
	order := make([]domain.ArtifactName, len(s.order))
	copy(order, s.order)
	return artifacts, order
}
