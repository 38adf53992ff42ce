package mocks

import (
	"context"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence that
// hands out the embedded repository mocks.
type MockPersistence struct {
	mock.Mock

	Rules      *MockRuleRepository
	Executions *MockExecutionRepository
	Entities   *MockEntityRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Rules:      &MockRuleRepository{},
		Executions: &MockExecutionRepository{},
		Entities:   &MockEntityRepository{},
	}
}

func (m *MockPersistence) RuleRepository() persistence.RuleRepository {
	return m.Rules
}

func (m *MockPersistence) ExecutionRepository() persistence.ExecutionRepository {
	return m.Executions
}

func (m *MockPersistence) EntityRepository() persistence.EntityRepository {
	return m.Entities
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockRuleRepository is a mock implementation of persistence.RuleRepository interface.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *models.WorkflowRule) error {
	args := m.Called(ctx, rule)

	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id string) (*models.WorkflowRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowRule), args.Error(1)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRuleRepository) List(ctx context.Context, opts persistence.ListRulesOptions) (*persistence.RuleListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.RuleListResult), args.Error(1)
}

func (m *MockRuleRepository) FindActiveByTrigger(ctx context.Context, trigger models.WorkflowTrigger) ([]*models.WorkflowRule, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowRule), args.Error(1)
}

// MockExecutionRepository is a mock implementation of persistence.ExecutionRepository interface.
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	args := m.Called(ctx, execution)

	return args.Error(0)
}

func (m *MockExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowExecution), args.Error(1)
}

func (m *MockExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) (*persistence.ExecutionListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.ExecutionListResult), args.Error(1)
}

func (m *MockExecutionRepository) DeleteByRule(ctx context.Context, ruleID string) error {
	args := m.Called(ctx, ruleID)

	return args.Error(0)
}

func (m *MockExecutionRepository) CountByStatus(ctx context.Context, ruleID string) (map[models.ExecutionStatus]int64, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[models.ExecutionStatus]int64), args.Error(1)
}

// MockEntityRepository is a mock implementation of persistence.EntityRepository interface.
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) UpdateStatus(ctx context.Context, entityType models.EntityType, id string, status string) error {
	args := m.Called(ctx, entityType, id, status)

	return args.Error(0)
}
