// Package actions runs the side effects of a rule: each action kind has a
// handler that resolves its config against the trigger payload and then
// publishes an event, enqueues a job or writes an entity status.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/queue"
)

// Metadata identifies the rule and execution an action runs for.
type Metadata struct {
	RuleID      string
	RuleName    string
	ExecutionID string
	// ActionOrder is filled in by Execute from the action being run.
	ActionOrder int
}

type handler func(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error)

type Executor struct {
	publisher eventbus.EventPublisher
	jobs      queue.JobQueue
	entities  persistence.EntityRepository
	logger    *slog.Logger
	now       func() time.Time
	handlers  map[models.ActionType]handler
}

type Option func(*Executor)

// WithClock replaces time.Now, used for task due dates.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

func NewExecutor(
	logger *slog.Logger,
	publisher eventbus.EventPublisher,
	jobs queue.JobQueue,
	entities persistence.EntityRepository,
	opts ...Option,
) *Executor {
	e := &Executor{
		publisher: publisher,
		jobs:      jobs,
		entities:  entities,
		logger:    logger.With("module", "action_executor"),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.handlers = map[models.ActionType]handler{
		models.ActionSendEmail:         e.sendEmail,
		models.ActionUpdateStatus:      e.updateStatus,
		models.ActionMoveStage:         e.moveStage,
		models.ActionCreateTask:        e.createTask,
		models.ActionNotifyUser:        e.notifyUser,
		models.ActionTriggerWebhook:    e.triggerWebhook,
		models.ActionScheduleInterview: e.scheduleInterview,
		models.ActionCalculateScore:    e.calculateScore,
		models.ActionAddToTalentPool:   e.addToTalentPool,
		models.ActionRequestApproval:   e.requestApproval,
	}

	return e
}

// Supports reports whether the executor has a handler for actionType.
func (e *Executor) Supports(actionType models.ActionType) bool {
	_, ok := e.handlers[actionType]

	return ok
}

// Execute runs one action. Failures are always returned as *ActionError.
func (e *Executor) Execute(ctx context.Context, action models.Action, input map[string]any, meta Metadata) (map[string]any, error) {
	run, ok := e.handlers[action.Type]
	if !ok {
		return nil, &ActionError{Type: action.Type, Err: fmt.Errorf("%w: %s", ErrUnsupportedAction, action.Type)}
	}

	if input == nil {
		input = map[string]any{}
	}

	meta.ActionOrder = action.Order

	e.logger.DebugContext(ctx, "Executing action",
		"action_type", action.Type,
		"order", action.Order,
		"rule_id", meta.RuleID,
		"execution_id", meta.ExecutionID,
	)

	result, err := run(ctx, action.Config, input, meta)
	if err != nil {
		var actionErr *ActionError
		if errors.As(err, &actionErr) {
			return nil, err
		}

		return nil, &ActionError{Type: action.Type, Err: err}
	}

	if result == nil {
		result = map[string]any{}
	}

	return result, nil
}

// configAs accepts both the pointer configs produced by decoding and the
// value configs built in code.
func configAs[T any](config models.ActionConfig) (T, error) {
	switch c := any(config).(type) {
	case *T:
		if c != nil {
			return *c, nil
		}
	case T:
		return c, nil
	}

	var zero T

	return zero, fmt.Errorf("%w: %T", ErrInvalidConfig, config)
}

type field struct {
	name  string
	value string
}

// required fails on the first field that is blank after resolution.
func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return missingField(f.name)
		}
	}

	return nil
}
