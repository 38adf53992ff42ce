// Package models defines the domain types of the recruiting workflow rule engine.
package models

import (
	"slices"
	"time"
)

// WorkflowRule reacts to a trigger, gates on its conditions and runs its
// actions in order.
type WorkflowRule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"                  validate:"required"`
	Description string          `json:"description,omitempty"`
	Trigger     WorkflowTrigger `json:"trigger"               validate:"workflow_trigger"`
	Conditions  []Condition     `json:"conditions"            validate:"dive"`
	Actions     []Action        `json:"actions"               validate:"required,min=1,dive"`
	IsActive    bool            `json:"isActive"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SortedActions returns the rule's actions ordered by Order. Actions sharing
// an Order keep their position relative to each other.
func (r *WorkflowRule) SortedActions() []Action {
	sorted := slices.Clone(r.Actions)

	slices.SortStableFunc(sorted, func(a, b Action) int {
		return a.Order - b.Order
	})

	return sorted
}
