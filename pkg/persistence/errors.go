package persistence

import (
	"errors"
	"fmt"
)

var (
	ErrRuleNotFound      = errors.New("rule not found")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrEntityNotFound    = errors.New("entity not found")

	// ErrUnknownEntityType is returned when UpdateStatus is asked to write an
	// entity kind the store has no table or directory for.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// RuleError wraps rule-related errors with additional context.
type RuleError struct {
	Op     string
	RuleID string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s operation failed for rule %s: %v", e.Op, e.RuleID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func (e *RuleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewRuleError(op, ruleID string, err error) *RuleError {
	return &RuleError{Op: op, RuleID: ruleID, Err: err}
}

// ExecutionError wraps execution-related errors with additional context.
type ExecutionError struct {
	Op          string
	ExecutionID string
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.ExecutionID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewExecutionError(op, executionID string, err error) *ExecutionError {
	return &ExecutionError{Op: op, ExecutionID: executionID, Err: err}
}

func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

func IsEntityNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsNotFound reports any of the not-found sentinels.
func IsNotFound(err error) bool {
	return IsRuleNotFound(err) || IsExecutionNotFound(err) || IsEntityNotFound(err)
}
