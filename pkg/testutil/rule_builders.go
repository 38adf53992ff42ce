// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestRule creates an active APPLICATION_RECEIVED rule with one
// SEND_EMAIL action. Overrides are applied in order.
func CreateTestRule(overrides ...func(*models.WorkflowRule)) *models.WorkflowRule {
	now := time.Now().UTC()

	rule := &models.WorkflowRule{
		ID:         uuid.New().String(),
		Name:       "Test Rule",
		Trigger:    models.TriggerApplicationReceived,
		Conditions: []models.Condition{},
		Actions: []models.Action{
			EmailAction(0, "{{candidate.email}}"),
		},
		IsActive:  true,
		CreatedBy: "test-user",
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(rule)
	}

	return rule
}

func WithID(id string) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.ID = id
	}
}

func WithTrigger(trigger models.WorkflowTrigger) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.Trigger = trigger
	}
}

func WithConditions(conditions ...models.Condition) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.Conditions = conditions
	}
}

func WithActions(actions ...models.Action) func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.Actions = actions
	}
}

// Inactive marks the rule as switched off.
func Inactive() func(*models.WorkflowRule) {
	return func(r *models.WorkflowRule) {
		r.IsActive = false
	}
}

func EmailAction(order int, to string) models.Action {
	return models.Action{
		Type:   models.ActionSendEmail,
		Config: &models.SendEmailConfig{To: to, Subject: "Test"},
		Order:  order,
	}
}

func ApprovalAction(order int, approverID string) models.Action {
	return models.Action{
		Type:   models.ActionRequestApproval,
		Config: &models.RequestApprovalConfig{ApproverID: approverID},
		Order:  order,
	}
}
