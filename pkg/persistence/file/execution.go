package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
)

const executionsDir = "executions"

type ExecutionRepository struct {
	store *Persistence
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if !validID(execution.ID) {
		return persistence.NewExecutionError("Save", execution.ID, errors.New("invalid execution id"))
	}

	now := time.Now().UTC()
	if execution.ExecutedAt.IsZero() {
		execution.ExecutedAt = now
	}

	if execution.UpdatedAt.IsZero() {
		execution.UpdatedAt = now
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.writeJSON(executionsDir, execution.ID, execution); err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.get(id)
}

func (r *ExecutionRepository) get(id string) (*models.WorkflowExecution, error) {
	if !validID(id) {
		return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	var execution models.WorkflowExecution

	err := r.store.readJSON(executionsDir, id, &execution)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return &execution, nil
}

func (r *ExecutionRepository) all() ([]*models.WorkflowExecution, error) {
	ids, err := r.store.listIDs(executionsDir)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.WorkflowExecution, 0, len(ids))

	for _, id := range ids {
		execution, err := r.get(id)
		if err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

func (r *ExecutionRepository) List(_ context.Context, opts persistence.ListExecutionsOptions) (*persistence.ExecutionListResult, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	executions, err := r.all()
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.WorkflowExecution, 0, len(executions))

	for _, execution := range executions {
		if opts.RuleID != "" && execution.RuleID != opts.RuleID {
			continue
		}

		if opts.Status != "" && execution.Status != opts.Status {
			continue
		}

		if opts.From != nil && execution.ExecutedAt.Before(*opts.From) {
			continue
		}

		if opts.To != nil && execution.ExecutedAt.After(*opts.To) {
			continue
		}

		filtered = append(filtered, execution)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].ExecutedAt.Equal(filtered[j].ExecutedAt) {
			return filtered[i].ID < filtered[j].ID
		}

		return filtered[i].ExecutedAt.After(filtered[j].ExecutedAt)
	})

	page, hasNext := paginate(filtered, opts.Limit, opts.Offset)

	return &persistence.ExecutionListResult{
		Executions:  page,
		TotalCount:  int64(len(filtered)),
		HasNextPage: hasNext,
	}, nil
}

func (r *ExecutionRepository) DeleteByRule(_ context.Context, ruleID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.deleteByRule(ruleID)
}

// deleteByRule expects the store lock to be held.
func (r *ExecutionRepository) deleteByRule(ruleID string) error {
	executions, err := r.all()
	if err != nil {
		return err
	}

	for _, execution := range executions {
		if execution.RuleID != ruleID {
			continue
		}

		err := os.Remove(r.store.path(executionsDir, execution.ID+".json"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete execution %s: %w", execution.ID, err)
		}
	}

	return nil
}

func (r *ExecutionRepository) CountByStatus(_ context.Context, ruleID string) (map[models.ExecutionStatus]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	executions, err := r.all()
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ExecutionStatus]int64)

	for _, execution := range executions {
		if ruleID != "" && execution.RuleID != ruleID {
			continue
		}

		counts[execution.Status]++
	}

	return counts, nil
}
