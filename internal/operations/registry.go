package operations

import (
	"sync"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

// Registry is the ordered list of steps a Manager runs. Steps run in the
// order they were registered; IDs are unique.
type Registry struct {
	mu    sync.RWMutex
	steps []Step
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends steps in order. It stops at the first nil, unnamed or
// duplicate step; the steps before it stay registered.
func (r *Registry) Register(steps ...Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range steps {
		if step == nil {
			return apperrors.NewAppValidationError("cannot register a nil step")
		}
		id := step.ID()
		if id == "" {
			return apperrors.NewAppValidationError("step ID cannot be empty")
		}
		if _, dup := r.index[id]; dup {
			return apperrors.NewAppValidationError("step " + id + " is already registered")
		}
		r.index[id] = len(r.steps)
		r.steps = append(r.steps, step)
	}
	return nil
}

// Get returns the step registered under id.
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("step " + id)
	}
	return r.steps[i], nil
}

// List returns the steps in execution order.
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Step(nil), r.steps...)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}
