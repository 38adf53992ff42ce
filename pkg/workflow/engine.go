// Package workflow runs rules: it gates them on their conditions, executes
// their action chains, records every attempt as an execution and drives the
// approval, retry and cancellation transitions.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/hireflow/pkg/actions"
	"github.com/dukex/hireflow/pkg/condition"
	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/otelhelper"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ActionExecutor runs a single action. *actions.Executor implements it.
type ActionExecutor interface {
	Execute(ctx context.Context, action models.Action, input map[string]any, meta actions.Metadata) (map[string]any, error)
}

// ExecutionMeta describes why an execution was started.
type ExecutionMeta struct {
	// Source is logged only: "event", "manual", "retry" or "schedule".
	Source  string
	RetryOf string
}

// ExecutionResult is what callers get back from running or resuming a rule.
type ExecutionResult struct {
	ExecutionID   string                  `json:"executionId"`
	RuleID        string                  `json:"ruleId"`
	Status        models.ExecutionStatus  `json:"status"`
	Output        *models.ExecutionOutput `json:"output,omitempty"`
	Error         string                  `json:"error,omitempty"`
	ActionResults []models.ActionResult   `json:"actionResults"`
}

func newExecutionResult(execution *models.WorkflowExecution) *ExecutionResult {
	result := &ExecutionResult{
		ExecutionID:   execution.ID,
		RuleID:        execution.RuleID,
		Status:        execution.Status,
		Output:        execution.Output,
		Error:         execution.Error,
		ActionResults: []models.ActionResult{},
	}

	if execution.Output != nil && execution.Output.ActionResults != nil {
		result.ActionResults = execution.Output.ActionResults
	}

	return result
}

type Engine struct {
	rules      persistence.RuleRepository
	executions persistence.ExecutionRepository
	bus        eventbus.EventBus
	actions    ActionExecutor
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
	newID      func() string

	mu     sync.Mutex
	cancel context.CancelFunc
}

type Option func(*Engine)

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

func NewEngine(
	logger *slog.Logger,
	store persistence.Persistence,
	bus eventbus.EventBus,
	executor ActionExecutor,
	opts ...Option,
) *Engine {
	e := &Engine{
		rules:      store.RuleRepository(),
		executions: store.ExecutionRepository(),
		bus:        bus,
		actions:    executor,
		logger:     logger.With("module", "workflow_engine"),
		tracer:     otelhelper.NoopTracer(),
		now:        time.Now,
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExecuteWorkflow records a new execution of rule for input and runs it until
// it completes, fails, is cancelled or pauses for approval. The rule's active
// flag is not checked here; callers decide whether inactive rules may run.
func (e *Engine) ExecuteWorkflow(ctx context.Context, rule *models.WorkflowRule, input map[string]any, meta ExecutionMeta) (*ExecutionResult, error) {
	if input == nil {
		input = map[string]any{}
	}

	started := e.now()

	execution := &models.WorkflowExecution{
		ID:         e.newID(),
		RuleID:     rule.ID,
		Status:     models.ExecutionStatusRunning,
		Input:      input,
		RetryOf:    meta.RetryOf,
		ExecutedAt: started,
		UpdatedAt:  started,
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.RuleIDKey, rule.ID),
		attribute.String(otelhelper.RuleNameKey, rule.Name),
		attribute.String(otelhelper.TriggerKey, string(rule.Trigger)),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	logger := e.logger.With("rule_id", rule.ID, "execution_id", execution.ID)
	logger.InfoContext(ctx, "Starting rule execution", "source", meta.Source, "retry_of", meta.RetryOf)

	err := e.executions.Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to record execution for rule %s: %w", rule.ID, err)
	}

	if !condition.Evaluate(rule.Conditions, input) {
		logger.InfoContext(ctx, "Conditions not met, skipping actions")

		execution.Status = models.ExecutionStatusCompleted
		execution.Output = &models.ExecutionOutput{
			ConditionsMet:   false,
			ExecutionTimeMs: e.since(started),
		}

		err = e.saveFinal(ctx, execution)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		span.SetAttributes(attribute.String(otelhelper.ExecutionStatusKey, string(execution.Status)))

		return newExecutionResult(execution), nil
	}

	execution.Output = &models.ExecutionOutput{ConditionsMet: true}

	result, err := e.runChain(ctx, logger, rule, execution, 0, started)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionStatusKey, string(result.Status)))

	return result, nil
}

// runChain executes the order-sorted actions of rule starting at from. The
// execution output already holds the results of earlier segments.
func (e *Engine) runChain(
	ctx context.Context,
	logger *slog.Logger,
	rule *models.WorkflowRule,
	execution *models.WorkflowExecution,
	from int,
	started time.Time,
) (*ExecutionResult, error) {
	chain := rule.SortedActions()
	output := execution.Output
	elapsedBefore := output.ExecutionTimeMs

	meta := actions.Metadata{RuleID: rule.ID, RuleName: rule.Name, ExecutionID: execution.ID}

	for i := from; i < len(chain); i++ {
		cancelled, err := e.isCancelled(ctx, execution.ID)
		if err != nil {
			return nil, err
		}

		if cancelled {
			logger.InfoContext(ctx, "Execution cancelled, stopping chain", "next_action", i)

			execution.Status = models.ExecutionStatusCancelled

			return newExecutionResult(execution), nil
		}

		action := chain[i]
		actionResult := e.runAction(ctx, logger, action, execution.Input, meta)
		output.ActionResults = append(output.ActionResults, actionResult)

		if !actionResult.Success && action.StopOnFailure {
			logger.WarnContext(ctx, "Action failed, stopping chain", "action_type", action.Type, "error", actionResult.Error)

			execution.Status = models.ExecutionStatusFailed
			execution.Error = actionResult.Error
			output.ExecutionTimeMs = elapsedBefore + e.since(started)

			return e.finish(ctx, rule, execution, action.Type)
		}

		if actionResult.Success && awaitsApproval(actionResult) {
			return e.suspend(ctx, logger, execution, actionResult, i+1, elapsedBefore+e.since(started))
		}
	}

	execution.Status = models.ExecutionStatusCompleted
	output.ExecutionTimeMs = elapsedBefore + e.since(started)

	return e.finish(ctx, rule, execution, "")
}

func (e *Engine) runAction(
	ctx context.Context,
	logger *slog.Logger,
	action models.Action,
	input map[string]any,
	meta actions.Metadata,
) models.ActionResult {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
		attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
		attribute.Int(otelhelper.ActionOrderKey, action.Order),
		attribute.String(otelhelper.ExecutionIDKey, meta.ExecutionID),
	)
	defer span.End()

	started := e.now()

	result, err := e.actions.Execute(ctx, action, input, meta)

	actionResult := models.ActionResult{
		ActionType:      action.Type,
		Order:           action.Order,
		Success:         err == nil,
		Result:          result,
		ExecutionTimeMs: e.since(started),
	}

	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ActionTypeKey, string(action.Type)))
		logger.ErrorContext(ctx, "Action failed", "action_type", action.Type, "order", action.Order, "error", err)

		actionResult.Error = err.Error()
	}

	return actionResult
}

func awaitsApproval(result models.ActionResult) bool {
	if result.ActionType != models.ActionRequestApproval {
		return false
	}

	awaiting, _ := result.Result[actions.AwaitingApprovalKey].(bool)

	return awaiting
}

// suspend parks the execution in PENDING until ProcessApproval decides it.
func (e *Engine) suspend(
	ctx context.Context,
	logger *slog.Logger,
	execution *models.WorkflowExecution,
	approval models.ActionResult,
	resumeIndex int,
	elapsed int64,
) (*ExecutionResult, error) {
	approverID, _ := approval.Result["approverId"].(string)
	message, _ := approval.Result["message"].(string)

	execution.Status = models.ExecutionStatusPending
	execution.Output.ExecutionTimeMs = elapsed
	execution.Output.Approval = &models.ApprovalState{
		ApproverID:  approverID,
		Message:     message,
		RequestedAt: e.now().UTC(),
		ResumeIndex: resumeIndex,
	}

	err := e.saveFinal(ctx, execution)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Execution waiting for approval", "approver_id", approverID, "resume_index", resumeIndex)

	return newExecutionResult(execution), nil
}

// finish stores a terminal execution and announces it.
func (e *Engine) finish(
	ctx context.Context,
	rule *models.WorkflowRule,
	execution *models.WorkflowExecution,
	failedAction models.ActionType,
) (*ExecutionResult, error) {
	err := e.saveFinal(ctx, execution)
	if err != nil {
		return nil, err
	}

	if execution.Status == models.ExecutionStatusCancelled {
		return newExecutionResult(execution), nil
	}

	base := events.NewBaseEvent(events.ExecutionCompletedEvent, rule.ID).WithExecution(execution.ID)

	var event eventbus.Event

	if execution.Status == models.ExecutionStatusFailed {
		base.Type = events.ExecutionFailedEvent
		event = events.ExecutionFailed{
			BaseEvent:    base,
			RuleName:     rule.Name,
			Error:        execution.Error,
			FailedAction: failedAction,
			DurationMs:   execution.Output.ExecutionTimeMs,
		}
	} else {
		succeeded, failed := countResults(execution.Output.ActionResults)
		event = events.ExecutionCompleted{
			BaseEvent:       base,
			RuleName:        rule.Name,
			ActionsExecuted: succeeded,
			ActionsFailed:   failed,
			DurationMs:      execution.Output.ExecutionTimeMs,
		}
	}

	e.publish(ctx, execution.ID, event)

	return newExecutionResult(execution), nil
}

// saveFinal writes the execution unless it was cancelled while the chain ran,
// in which case the stored CANCELLED record wins.
func (e *Engine) saveFinal(ctx context.Context, execution *models.WorkflowExecution) error {
	cancelled, err := e.isCancelled(ctx, execution.ID)
	if err != nil {
		return err
	}

	if cancelled {
		execution.Status = models.ExecutionStatusCancelled

		return nil
	}

	execution.UpdatedAt = e.now()

	err = e.executions.Save(ctx, execution)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", execution.ID, err)
	}

	return nil
}

func (e *Engine) isCancelled(ctx context.Context, executionID string) (bool, error) {
	current, err := e.executions.GetByID(ctx, executionID)
	if err != nil {
		return false, fmt.Errorf("failed to reload execution %s: %w", executionID, err)
	}

	return current.Status == models.ExecutionStatusCancelled, nil
}

// publish logs failures instead of returning them: the execution record is
// already the source of truth.
func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	err := e.bus.Publish(ctx, key, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

func (e *Engine) since(started time.Time) int64 {
	return e.now().Sub(started).Milliseconds()
}

func countResults(results []models.ActionResult) (succeeded int, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}

	return succeeded, failed
}
