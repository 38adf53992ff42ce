package workflow

import (
	"errors"
	"fmt"

	"github.com/dukex/hireflow/pkg/models"
)

// ErrInvalidState is returned when an execution is not in a status that
// allows the requested transition.
var ErrInvalidState = errors.New("invalid execution state")

type StateError struct {
	Op          string
	ExecutionID string
	Status      models.ExecutionStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s execution %s in status %s: %v", e.Op, e.ExecutionID, e.Status, ErrInvalidState)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

func newStateError(op string, execution *models.WorkflowExecution) error {
	return &StateError{Op: op, ExecutionID: execution.ID, Status: execution.Status}
}

// IsInvalidState reports whether err comes from a disallowed status transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
