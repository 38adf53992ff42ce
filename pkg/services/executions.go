package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/workflow"
)

// ExecuteRule runs a rule synchronously against input. Inactive rules may be
// run this way; only trigger dispatch requires a rule to be active.
func (s *Rules) ExecuteRule(ctx context.Context, id string, input map[string]any) (*workflow.ExecutionResult, error) {
	rule, err := s.persistence.RuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.engine.ExecuteWorkflow(ctx, rule, input, workflow.ExecutionMeta{Source: "manual"})
}

func (s *Rules) GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	return s.persistence.ExecutionRepository().GetByID(ctx, id)
}

type ListExecutionsRequest struct {
	RuleID string
	Status models.ExecutionStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (s *Rules) ListExecutions(ctx context.Context, req ListExecutionsRequest) (*persistence.ExecutionListResult, error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, NewValidationError("ListExecutions", "INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", req.Status), ErrInvalidStatus)
	}

	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return nil, NewValidationError("ListExecutions", "INVALID_DATE_RANGE",
			"'from' must not be after 'to'", ErrInvalidRequest)
	}

	result, err := s.persistence.ExecutionRepository().List(ctx, persistence.ListExecutionsOptions{
		RuleID: req.RuleID,
		Status: req.Status,
		From:   req.From,
		To:     req.To,
		Limit:  persistence.NormalizeLimit(req.Limit),
		Offset: persistence.NormalizeOffset(req.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return result, nil
}

func (s *Rules) RetryExecution(ctx context.Context, id string) (*workflow.ExecutionResult, error) {
	return s.engine.RetryExecution(ctx, id)
}

func (s *Rules) CancelExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	return s.engine.CancelExecution(ctx, id)
}

type ApprovalRequest struct {
	Approved   bool   `json:"approved"`
	ApproverID string `json:"approverId" validate:"required"`
	Comment    string `json:"comment,omitempty"`
}

func (s *Rules) ProcessApproval(ctx context.Context, executionID string, req ApprovalRequest) (*workflow.ExecutionResult, error) {
	err := s.validate.Struct(req)
	if err != nil {
		return nil, NewValidationError("ProcessApproval", "INVALID_APPROVAL", describeValidation(err), ErrInvalidRequest)
	}

	return s.engine.ProcessApproval(ctx, executionID, workflow.ApprovalDecision{
		Approved:   req.Approved,
		ApproverID: req.ApproverID,
		Comment:    req.Comment,
	})
}

// RuleStats summarises the executions recorded for a rule.
type RuleStats struct {
	RuleID   string                           `json:"ruleId"`
	Total    int64                            `json:"total"`
	ByStatus map[models.ExecutionStatus]int64 `json:"byStatus"`
	// SuccessRate is completed / (completed + failed), 0 when neither happened.
	SuccessRate float64 `json:"successRate"`
}

func (s *Rules) Stats(ctx context.Context, ruleID string) (*RuleStats, error) {
	_, err := s.persistence.RuleRepository().GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	counts, err := s.persistence.ExecutionRepository().CountByStatus(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	stats := &RuleStats{RuleID: ruleID, ByStatus: make(map[models.ExecutionStatus]int64, len(models.ExecutionStatuses))}

	for _, status := range models.ExecutionStatuses {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}

	finished := counts[models.ExecutionStatusCompleted] + counts[models.ExecutionStatusFailed]
	if finished > 0 {
		stats.SuccessRate = float64(counts[models.ExecutionStatusCompleted]) / float64(finished)
	}

	return stats, nil
}
