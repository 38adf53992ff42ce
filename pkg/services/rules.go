package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Rules struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	engine      *workflow.Engine
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Rules)

func WithClock(now func() time.Time) Option {
	return func(r *Rules) {
		r.now = now
	}
}

// NewRules creates the rule service. Rule lifecycle events go to publisher;
// manual runs, retries, cancellations and approvals go through engine.
func NewRules(
	logger *slog.Logger,
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	engine *workflow.Engine,
	opts ...Option,
) *Rules {
	r := &Rules{
		persistence: persistence,
		publisher:   publisher,
		engine:      engine,
		validate:    models.NewValidator(),
		logger:      logger.With("module", "rules_service"),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HealthCheck checks the health of the persistence layer.
func (s *Rules) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

type CreateRuleRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Trigger     models.WorkflowTrigger `json:"trigger"`
	Conditions  []models.Condition     `json:"conditions"`
	Actions     []models.Action        `json:"actions"`
	// IsActive defaults to true.
	IsActive  *bool  `json:"isActive,omitempty"`
	CreatedBy string `json:"createdBy"`
}

// CreateRule validates and stores a new rule.
func (s *Rules) CreateRule(ctx context.Context, req CreateRuleRequest) (*models.WorkflowRule, error) {
	now := s.now().UTC()

	rule := &models.WorkflowRule{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if rule.Conditions == nil {
		rule.Conditions = []models.Condition{}
	}

	err := s.validateRule("CreateRule", rule)
	if err != nil {
		return nil, err
	}

	err = s.persistence.RuleRepository().Save(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	s.logger.InfoContext(ctx, "Rule created", "rule_id", rule.ID, "trigger", rule.Trigger)

	s.publish(ctx, rule.ID, events.RuleCreated{
		BaseEvent: events.NewBaseEvent(events.RuleCreatedEvent, rule.ID),
		Name:      rule.Name,
		Trigger:   rule.Trigger,
		IsActive:  rule.IsActive,
	})

	return rule, nil
}

// UpdateRuleRequest is a partial update; nil fields are left unchanged.
type UpdateRuleRequest struct {
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Trigger     *models.WorkflowTrigger `json:"trigger,omitempty"`
	Conditions  *[]models.Condition     `json:"conditions,omitempty"`
	Actions     *[]models.Action        `json:"actions,omitempty"`
	IsActive    *bool                   `json:"isActive,omitempty"`
}

func (s *Rules) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*models.WorkflowRule, error) {
	rule, err := s.persistence.RuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}

	if req.Description != nil {
		rule.Description = *req.Description
	}

	if req.Trigger != nil {
		rule.Trigger = *req.Trigger
	}

	if req.Conditions != nil {
		rule.Conditions = *req.Conditions
	}

	if req.Actions != nil {
		rule.Actions = *req.Actions
	}

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	err = s.validateRule("UpdateRule", rule)
	if err != nil {
		return nil, err
	}

	return s.saveUpdated(ctx, rule)
}

// ToggleRule flips the active flag of a rule.
func (s *Rules) ToggleRule(ctx context.Context, id string) (*models.WorkflowRule, error) {
	rule, err := s.persistence.RuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.IsActive = !rule.IsActive

	return s.saveUpdated(ctx, rule)
}

func (s *Rules) saveUpdated(ctx context.Context, rule *models.WorkflowRule) (*models.WorkflowRule, error) {
	rule.UpdatedAt = s.now().UTC()

	err := s.persistence.RuleRepository().Save(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	s.publish(ctx, rule.ID, events.RuleUpdated{
		BaseEvent: events.NewBaseEvent(events.RuleUpdatedEvent, rule.ID),
		Name:      rule.Name,
		Trigger:   rule.Trigger,
		IsActive:  rule.IsActive,
	})

	return rule, nil
}

// DeleteRule removes a rule together with its executions.
func (s *Rules) DeleteRule(ctx context.Context, id string) error {
	_, err := s.persistence.RuleRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.persistence.RuleRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	s.logger.InfoContext(ctx, "Rule deleted", "rule_id", id)

	s.publish(ctx, id, events.RuleDeleted{
		BaseEvent: events.NewBaseEvent(events.RuleDeletedEvent, id),
	})

	return nil
}

func (s *Rules) GetRule(ctx context.Context, id string) (*models.WorkflowRule, error) {
	return s.persistence.RuleRepository().GetByID(ctx, id)
}

type ListRulesRequest struct {
	Trigger  models.WorkflowTrigger
	IsActive *bool
	Name     string
	Limit    int
	Offset   int
}

func (s *Rules) ListRules(ctx context.Context, req ListRulesRequest) (*persistence.RuleListResult, error) {
	if req.Trigger != "" && !req.Trigger.IsValid() {
		return nil, NewValidationError("ListRules", "UNKNOWN_TRIGGER",
			fmt.Sprintf("unknown trigger '%s'", req.Trigger), ErrUnknownTrigger)
	}

	result, err := s.persistence.RuleRepository().List(ctx, persistence.ListRulesOptions{
		Trigger:  req.Trigger,
		IsActive: req.IsActive,
		Name:     req.Name,
		Limit:    persistence.NormalizeLimit(req.Limit),
		Offset:   persistence.NormalizeOffset(req.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	return result, nil
}

func (s *Rules) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, key, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish rule event", "event_type", event.GetType(), "rule_id", key, "error", err)
	}
}
