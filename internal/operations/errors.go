package operations

import (
	"errors"
	"fmt"
)

// StageError wraps the failure of one pipeline stage.
type StageError struct {
	StageID string
	Err     error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.StageID, e.Err)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage that failed when err wraps a StageError.
func FailedStage(err error) (string, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.StageID, true
	}
	return "", false
}
