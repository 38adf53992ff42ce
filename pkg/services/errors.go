// Package services implements the rule management use cases on top of the
// persistence layer and the workflow engine.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/workflow"
)

// Validation errors (400 Bad Request). Every one of them wraps ErrValidation.
var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidRequest           = fmt.Errorf("%w: invalid request", ErrValidation)
	ErrRuleNameRequired         = fmt.Errorf("%w: rule name is required", ErrValidation)
	ErrActionsRequired          = fmt.Errorf("%w: rule must have at least one action", ErrValidation)
	ErrUnknownActionType        = fmt.Errorf("%w: unknown action type", ErrValidation)
	ErrUnknownOperator          = fmt.Errorf("%w: unknown condition operator", ErrValidation)
	ErrUnknownTrigger           = fmt.Errorf("%w: unknown trigger", ErrValidation)
	ErrInvalidBuilderGraph      = fmt.Errorf("%w: invalid builder graph", ErrValidation)
	ErrUnsupportedExportVersion = fmt.Errorf("%w: unsupported export version", ErrValidation)
	ErrInvalidImport            = fmt.Errorf("%w: invalid rule import", ErrValidation)
	ErrUnsupportedFormat        = fmt.Errorf("%w: unsupported format", ErrValidation)
	ErrInvalidStatus            = fmt.Errorf("%w: invalid execution status", ErrValidation)
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflictError checks if an error is a state conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, workflow.ErrInvalidState)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsNotFound(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
