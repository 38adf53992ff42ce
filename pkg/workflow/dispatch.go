package workflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
)

var ErrAlreadyStarted = errors.New("engine already started")

// Start registers a handler for every recruiting event that maps to a trigger
// and subscribes to the bus. Deliveries stop when ctx ends or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return ErrAlreadyStarted
	}

	for _, eventType := range slices.Sorted(maps.Keys(eventTriggers)) {
		err := e.bus.Handle(eventType, e.eventHandler(eventTriggers[eventType]))
		if err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	subCtx, cancel := context.WithCancel(ctx)

	err := e.bus.Subscribe(subCtx)
	if err != nil {
		cancel()

		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	e.cancel = cancel

	e.logger.InfoContext(ctx, "Engine subscribed to recruiting events", "event_types", len(eventTriggers))

	return nil
}

// Stop ends the subscription opened by Start. The bus itself stays open.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil

		e.logger.Info("Engine stopped")
	}
}

func (e *Engine) eventHandler(trigger models.WorkflowTrigger) eventbus.EventHandler {
	return func(ctx context.Context, event any) error {
		recruiting, ok := event.(*events.RecruitingEvent)
		if !ok {
			e.logger.WarnContext(ctx, "Ignoring unexpected event payload", "trigger", trigger, "event", fmt.Sprintf("%T", event))

			return nil
		}

		e.logger.DebugContext(ctx, "Received trigger event", "event_id", recruiting.ID, "event_type", recruiting.Type, "trigger", trigger)

		e.HandleTrigger(ctx, trigger, recruiting.Payload)

		return nil
	}
}

// HandleTrigger runs every active rule for trigger against payload, one after
// the other, oldest rule first. Failures are logged per rule and never stop
// the remaining rules.
func (e *Engine) HandleTrigger(ctx context.Context, trigger models.WorkflowTrigger, payload map[string]any) []*ExecutionResult {
	logger := e.logger.With("trigger", trigger)

	rules, err := e.rules.FindActiveByTrigger(ctx, trigger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load rules for trigger", "error", err)

		return nil
	}

	if len(rules) == 0 {
		logger.DebugContext(ctx, "No active rules for trigger")

		return nil
	}

	results := make([]*ExecutionResult, 0, len(rules))

	for _, rule := range rules {
		result, err := e.ExecuteWorkflow(ctx, rule, payload, ExecutionMeta{Source: "event"})
		if err != nil {
			logger.ErrorContext(ctx, "Rule execution failed", "rule_id", rule.ID, "error", err)

			continue
		}

		results = append(results, result)
	}

	logger.InfoContext(ctx, "Trigger handled", "rules", len(rules), "executions", len(results))

	return results
}
