package workflow

import (
	"context"
	"fmt"

	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

// ApprovalDecision is the input of ProcessApproval.
type ApprovalDecision struct {
	Approved   bool
	ApproverID string
	Comment    string
}

// ProcessApproval records the decision on a PENDING execution. Approval
// resumes the chain after the REQUEST_APPROVAL action against the rule's
// current actions; rejection cancels the execution. A PENDING execution with
// no approval record, such as one written by another producer, is approved
// from the first action.
func (e *Engine) ProcessApproval(ctx context.Context, executionID string, decision ApprovalDecision) (*ExecutionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.approval",
		attribute.String(otelhelper.ExecutionIDKey, executionID),
		attribute.Bool("hireflow.approval.approved", decision.Approved),
	)
	defer span.End()

	execution, err := e.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Status != models.ExecutionStatusPending {
		return nil, newStateError("approve", execution)
	}

	if execution.Output == nil {
		execution.Output = &models.ExecutionOutput{ConditionsMet: true}
	}

	if execution.Output.Approval == nil {
		execution.Output.Approval = &models.ApprovalState{RequestedAt: execution.ExecutedAt}
	}

	decidedAt := e.now().UTC()
	approval := execution.Output.Approval
	approval.DecidedBy = decision.ApproverID
	approval.DecidedAt = &decidedAt
	approval.Comment = decision.Comment

	logger := e.logger.With("rule_id", execution.RuleID, "execution_id", execution.ID)

	decided := events.ApprovalDecided{
		BaseEvent: events.NewBaseEvent(events.ApprovalRejectedEvent, execution.RuleID).WithExecution(execution.ID),
		DecidedBy: decision.ApproverID,
		Comment:   decision.Comment,
	}

	if !decision.Approved {
		approval.Decision = models.ApprovalRejected
		execution.Status = models.ExecutionStatusCancelled
		execution.Error = "approval rejected"

		if decision.Comment != "" {
			execution.Error += ": " + decision.Comment
		}

		execution.UpdatedAt = e.now()

		err = e.executions.Save(ctx, execution)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
		}

		logger.InfoContext(ctx, "Approval rejected", "decided_by", decision.ApproverID)
		e.publish(ctx, execution.ID, decided)

		return newExecutionResult(execution), nil
	}

	rule, err := e.rules.GetByID(ctx, execution.RuleID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	approval.Decision = models.ApprovalApproved
	execution.Status = models.ExecutionStatusRunning
	execution.UpdatedAt = e.now()

	err = e.executions.Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	logger.InfoContext(ctx, "Approval granted, resuming chain", "decided_by", decision.ApproverID, "resume_index", approval.ResumeIndex)

	decided.Type = events.ApprovalGrantedEvent
	e.publish(ctx, execution.ID, decided)

	result, err := e.runChain(ctx, logger, rule, execution, approval.ResumeIndex, e.now())
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return result, nil
}

// RetryExecution starts a new execution of a FAILED execution's rule with the
// same input. The failed record is left untouched.
func (e *Engine) RetryExecution(ctx context.Context, executionID string) (*ExecutionResult, error) {
	execution, err := e.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if !execution.Status.CanRetry() {
		return nil, newStateError("retry", execution)
	}

	rule, err := e.rules.GetByID(ctx, execution.RuleID)
	if err != nil {
		return nil, err
	}

	return e.ExecuteWorkflow(ctx, rule, execution.Input, ExecutionMeta{Source: "retry", RetryOf: execution.ID})
}

// CancelExecution marks a PENDING or RUNNING execution as CANCELLED. A running
// chain notices before its next action; effects already applied stay.
func (e *Engine) CancelExecution(ctx context.Context, executionID string) (*models.WorkflowExecution, error) {
	execution, err := e.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if !execution.Status.CanCancel() {
		return nil, newStateError("cancel", execution)
	}

	execution.Status = models.ExecutionStatusCancelled
	execution.UpdatedAt = e.now()

	err = e.executions.Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel execution %s: %w", execution.ID, err)
	}

	e.logger.InfoContext(ctx, "Execution cancelled", "execution_id", execution.ID, "rule_id", execution.RuleID)

	return execution, nil
}
