package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
)

const rulesDir = "rules"

type RuleRepository struct {
	store *Persistence
}

func (r *RuleRepository) Save(_ context.Context, rule *models.WorkflowRule) error {
	if !validID(rule.ID) {
		return persistence.NewRuleError("Save", rule.ID, errors.New("invalid rule id"))
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.writeJSON(rulesDir, rule.ID, rule); err != nil {
		return persistence.NewRuleError("Save", rule.ID, err)
	}

	return nil
}

func (r *RuleRepository) GetByID(_ context.Context, id string) (*models.WorkflowRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.get(id)
}

func (r *RuleRepository) get(id string) (*models.WorkflowRule, error) {
	if !validID(id) {
		return nil, persistence.NewRuleError("GetByID", id, persistence.ErrRuleNotFound)
	}

	var rule models.WorkflowRule

	err := r.store.readJSON(rulesDir, id, &rule)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewRuleError("GetByID", id, persistence.ErrRuleNotFound)
	}

	if err != nil {
		return nil, persistence.NewRuleError("GetByID", id, err)
	}

	return &rule, nil
}

func (r *RuleRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if !validID(id) {
		return persistence.NewRuleError("Delete", id, persistence.ErrRuleNotFound)
	}

	err := os.Remove(r.store.path(rulesDir, id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewRuleError("Delete", id, persistence.ErrRuleNotFound)
	}

	if err != nil {
		return persistence.NewRuleError("Delete", id, err)
	}

	if err := r.store.executionRepo.deleteByRule(id); err != nil {
		return persistence.NewRuleError("Delete", id, err)
	}

	return nil
}

func (r *RuleRepository) all() ([]*models.WorkflowRule, error) {
	ids, err := r.store.listIDs(rulesDir)
	if err != nil {
		return nil, err
	}

	rules := make([]*models.WorkflowRule, 0, len(ids))

	for _, id := range ids {
		rule, err := r.get(id)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func (r *RuleRepository) List(_ context.Context, opts persistence.ListRulesOptions) (*persistence.RuleListResult, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rules, err := r.all()
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(opts.Name)
	filtered := make([]*models.WorkflowRule, 0, len(rules))

	for _, rule := range rules {
		if opts.Trigger != "" && rule.Trigger != opts.Trigger {
			continue
		}

		if opts.IsActive != nil && rule.IsActive != *opts.IsActive {
			continue
		}

		if name != "" && !strings.Contains(strings.ToLower(rule.Name), name) {
			continue
		}

		filtered = append(filtered, rule)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID < filtered[j].ID
		}

		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	page, hasNext := paginate(filtered, opts.Limit, opts.Offset)

	return &persistence.RuleListResult{
		Rules:       page,
		TotalCount:  int64(len(filtered)),
		HasNextPage: hasNext,
	}, nil
}

func (r *RuleRepository) FindActiveByTrigger(_ context.Context, trigger models.WorkflowTrigger) ([]*models.WorkflowRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rules, err := r.all()
	if err != nil {
		return nil, err
	}

	active := make([]*models.WorkflowRule, 0)

	for _, rule := range rules {
		if rule.IsActive && rule.Trigger == trigger {
			active = append(active, rule)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}

		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	return active, nil
}
