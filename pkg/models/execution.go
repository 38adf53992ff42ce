package models

import (
	"slices"
	"time"
)

// ExecutionStatus is the state of a WorkflowExecution.
//
//	RUNNING -> COMPLETED | FAILED | PENDING (approval) | CANCELLED
//	PENDING -> RUNNING (approved) | CANCELLED (rejected or cancelled)
//	FAILED  -> retried as a new execution
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "PENDING"
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusCancelled ExecutionStatus = "CANCELLED"
)

// ExecutionStatuses lists every execution status.
var ExecutionStatuses = []ExecutionStatus{
	ExecutionStatusPending,
	ExecutionStatusRunning,
	ExecutionStatusCompleted,
	ExecutionStatusFailed,
	ExecutionStatusCancelled,
}

// IsValid reports whether s is a known status.
func (s ExecutionStatus) IsValid() bool {
	return slices.Contains(ExecutionStatuses, s)
}

// IsTerminal reports whether no further transition is expected from s.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// CanRetry reports whether an execution in status s may be retried.
func (s ExecutionStatus) CanRetry() bool {
	return s == ExecutionStatusFailed
}

// CanCancel reports whether an execution in status s may be cancelled.
func (s ExecutionStatus) CanCancel() bool {
	return s == ExecutionStatusPending || s == ExecutionStatusRunning
}

// ActionResult records the outcome of one action of a chain.
type ActionResult struct {
	ActionType      ActionType     `json:"actionType"`
	Order           int            `json:"order"`
	Success         bool           `json:"success"`
	Result          map[string]any `json:"result,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
}

// ApprovalDecision is the outcome of a human approval.
type ApprovalDecision string

const (
	ApprovalApproved ApprovalDecision = "approved"
	ApprovalRejected ApprovalDecision = "rejected"
)

// ApprovalState tracks an execution paused by a REQUEST_APPROVAL action.
type ApprovalState struct {
	ApproverID  string           `json:"approverId,omitempty"`
	Message     string           `json:"message,omitempty"`
	RequestedAt time.Time        `json:"requestedAt"`
	ResumeIndex int              `json:"resumeIndex"`
	Decision    ApprovalDecision `json:"decision,omitempty"`
	DecidedBy   string           `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time       `json:"decidedAt,omitempty"`
	Comment     string           `json:"comment,omitempty"`
}

// ExecutionOutput is the structured result stored on an execution.
type ExecutionOutput struct {
	ConditionsMet   bool           `json:"conditionsMet"`
	ActionResults   []ActionResult `json:"actionResults,omitempty"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
	Approval        *ApprovalState `json:"approval,omitempty"`
}

// WorkflowExecution is one attempt to run a rule against a specific input.
type WorkflowExecution struct {
	ID         string           `json:"id"`
	RuleID     string           `json:"ruleId"`
	Status     ExecutionStatus  `json:"status"`
	Input      map[string]any   `json:"input"`
	Output     *ExecutionOutput `json:"output,omitempty"`
	Error      string           `json:"error,omitempty"`
	RetryOf    string           `json:"retryOf,omitempty"`
	ExecutedAt time.Time        `json:"executedAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
