package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

// funcStep adapts a function to a Step for tests.
type funcStep struct {
	BaseStage
	fn func(ctx context.Context, state *OperationState) error
}

func newFuncStep(id string, fn func(ctx context.Context, state *OperationState) error) *funcStep {
	return &funcStep{BaseStage: NewBaseStage(id, id), fn: fn}
}

func (s *funcStep) Execute(ctx context.Context, state *OperationState) error {
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, state)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFuncStep("b", nil)))
	require.NoError(t, r.Register(newFuncStep("a", nil)))
	require.NoError(t, r.Register(newFuncStep("c", nil)))

	ids := make([]string, 0, r.Count())
	for _, s := range r.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "registration order is execution order")

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistry_RejectsInvalidSteps(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register(nil), apperrors.ErrValidation)
	assert.ErrorIs(t, r.Register(newFuncStep("", nil)), apperrors.ErrValidation)

	require.NoError(t, r.Register(newFuncStep("dup", nil)))
	assert.ErrorIs(t, r.Register(newFuncStep("next", nil), newFuncStep("dup", nil)), apperrors.ErrValidation)
	assert.Equal(t, 2, r.Count(), "steps before the duplicate stay registered")
}

func TestNewPipelineRegistry_Order(t *testing.T) {
	r, err := NewPipelineRegistry(nil, nil, nil)
	require.NoError(t, err)

	ids := make([]string, 0, r.Count())
	for _, s := range r.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{
		StageIDMissingCheck,
		StageIDSchemaReduction,
		StageIDValidityRepair,
		StageIDCorrelation,
		StageIDDropRepaired,
		StageIDDerivedCategorical,
		StageIDDispersion,
		StageIDSkewTransform,
	}, ids)
}
