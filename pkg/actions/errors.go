package actions

import (
	"errors"
	"fmt"

	"github.com/dukex/hireflow/pkg/models"
)

var (
	ErrUnsupportedAction = errors.New("unsupported action type")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidConfig     = errors.New("invalid action config")
)

// ActionError is returned by every failing handler.
type ActionError struct {
	Type models.ActionType
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s action failed: %v", e.Type, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func (e *ActionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
