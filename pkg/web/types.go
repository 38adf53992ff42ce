// Package web provides HTTP request and response types for the rule API.
package web

import (
	"github.com/dukex/hireflow/pkg/models"
)

// CreateRuleRequest is the body of POST /rules.
type CreateRuleRequest struct {
	Name        string                 `json:"name"                  validate:"required"`
	Description string                 `json:"description,omitempty"`
	Trigger     models.WorkflowTrigger `json:"trigger"               validate:"required"`
	Conditions  []models.Condition     `json:"conditions"`
	Actions     []models.Action        `json:"actions"`
	IsActive    *bool                  `json:"isActive,omitempty"`
	CreatedBy   string                 `json:"createdBy"             validate:"required"`
}

// UpdateRuleRequest is the body of PATCH /rules/:id. Omitted fields are kept.
type UpdateRuleRequest struct {
	Name        *string                 `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description *string                 `json:"description,omitempty"`
	Trigger     *models.WorkflowTrigger `json:"trigger,omitempty"`
	Conditions  *[]models.Condition     `json:"conditions,omitempty"`
	Actions     *[]models.Action        `json:"actions,omitempty"`
	IsActive    *bool                   `json:"isActive,omitempty"`
}

// BuilderRuleRequest is the body of POST /rules/builder.
type BuilderRuleRequest struct {
	Name        string              `json:"name"                  validate:"required"`
	Description string              `json:"description,omitempty"`
	IsActive    *bool               `json:"isActive,omitempty"`
	CreatedBy   string              `json:"createdBy"             validate:"required"`
	Graph       models.BuilderGraph `json:"graph"`
}

// ExecuteRuleRequest is the body of POST /rules/:id/execute.
type ExecuteRuleRequest struct {
	Input map[string]any `json:"input"`
}

// ApprovalRequest is the body of POST /executions/:id/approval.
type ApprovalRequest struct {
	Approved   bool   `json:"approved"`
	ApproverID string `json:"approverId" validate:"required"`
	Comment    string `json:"comment,omitempty"`
}

// Pagination echoes the effective page of a list response.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type RuleListResponse struct {
	Rules       []*models.WorkflowRule `json:"rules"`
	TotalCount  int64                  `json:"totalCount"`
	HasNextPage bool                   `json:"hasNextPage"`
	Pagination  Pagination             `json:"pagination"`
}

type ExecutionListResponse struct {
	Executions  []*models.WorkflowExecution `json:"executions"`
	TotalCount  int64                       `json:"totalCount"`
	HasNextPage bool                        `json:"hasNextPage"`
	Pagination  Pagination                  `json:"pagination"`
}
