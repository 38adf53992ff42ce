// Package persistence provides the storage abstraction for rules, executions and the entity status writer.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/hireflow/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Persistence interface {
	RuleRepository() RuleRepository
	ExecutionRepository() ExecutionRepository
	EntityRepository() EntityRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type RuleRepository interface {
	// Save inserts or replaces the rule. Zero timestamps are filled in.
	Save(ctx context.Context, rule *models.WorkflowRule) error
	GetByID(ctx context.Context, id string) (*models.WorkflowRule, error)
	// Delete removes the rule and every execution recorded for it.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListRulesOptions) (*RuleListResult, error)
	// FindActiveByTrigger returns active rules for trigger, oldest first.
	FindActiveByTrigger(ctx context.Context, trigger models.WorkflowTrigger) ([]*models.WorkflowRule, error)
}

type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	List(ctx context.Context, opts ListExecutionsOptions) (*ExecutionListResult, error)
	DeleteByRule(ctx context.Context, ruleID string) error
	CountByStatus(ctx context.Context, ruleID string) (map[models.ExecutionStatus]int64, error)
}

// EntityRepository writes the status column of recruiting entities owned by
// the wider platform.
type EntityRepository interface {
	UpdateStatus(ctx context.Context, entityType models.EntityType, id string, status string) error
}

type ListRulesOptions struct {
	Trigger  models.WorkflowTrigger
	IsActive *bool
	// Name matches rules whose name contains it, case-insensitively.
	Name   string
	Limit  int
	Offset int
}

type RuleListResult struct {
	Rules       []*models.WorkflowRule `json:"rules"`
	TotalCount  int64                  `json:"totalCount"`
	HasNextPage bool                   `json:"hasNextPage"`
}

type ListExecutionsOptions struct {
	RuleID string
	Status models.ExecutionStatus
	// From and To bound ExecutedAt, both inclusive.
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type ExecutionListResult struct {
	Executions  []*models.WorkflowExecution `json:"executions"`
	TotalCount  int64                       `json:"totalCount"`
	HasNextPage bool                        `json:"hasNextPage"`
}

// NormalizeLimit clamps a requested page size to (0, MaxListLimit], using
// DefaultListLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}

// NormalizeOffset turns negative offsets into 0.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}

	return offset
}
