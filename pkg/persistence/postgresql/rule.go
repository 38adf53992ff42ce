package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/persistence/sqlbase"
)

const ruleColumns = `
	id
  , name
  , description
  , trigger_type
  , conditions
  , actions
  , is_active
  , created_by
  , created_at
  , updated_at
`

// RuleRepository handles rule-related database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.WorkflowRule, error) {
	var (
		rule           models.WorkflowRule
		conditionsJSON []byte
		actionsJSON    []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.Trigger,
		&conditionsJSON,
		&actionsJSON,
		&rule.IsActive,
		&rule.CreatedBy,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions of rule %s: %w", rule.ID, err)
	}

	if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions of rule %s: %w", rule.ID, err)
	}

	rule.CreatedAt = rule.CreatedAt.UTC()
	rule.UpdatedAt = rule.UpdatedAt.UTC()

	return &rule, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *models.WorkflowRule) error {
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	conditions := rule.Conditions
	if conditions == nil {
		conditions = []models.Condition{}
	}

	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return persistence.NewRuleError("Save", rule.ID, fmt.Errorf("failed to marshal conditions: %w", err))
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return persistence.NewRuleError("Save", rule.ID, fmt.Errorf("failed to marshal actions: %w", err))
	}

	query := `
		INSERT INTO workflow_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trigger_type = EXCLUDED.trigger_type,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		rule.Trigger,
		conditionsJSON,
		actionsJSON,
		rule.IsActive,
		rule.CreatedBy,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRuleError("Save", rule.ID, err)
	}

	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id string) (*models.WorkflowRule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM workflow_rules WHERE id = $1`, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewRuleError("GetByID", id, persistence.ErrRuleNotFound)
	}

	if err != nil {
		return nil, persistence.NewRuleError("GetByID", id, err)
	}

	return rule, nil
}

// Delete removes the rule; executions follow through ON DELETE CASCADE.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflow_rules WHERE id = $1`, id)
	if err != nil {
		return persistence.NewRuleError("Delete", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRuleError("Delete", id, fmt.Errorf("failed to get rows affected: %w", err))
	}

	if rowsAffected == 0 {
		return persistence.NewRuleError("Delete", id, persistence.ErrRuleNotFound)
	}

	return nil
}

func (r *RuleRepository) List(ctx context.Context, opts persistence.ListRulesOptions) (*persistence.RuleListResult, error) {
	var where sqlbase.Where

	if opts.Trigger != "" {
		where.Add("trigger_type = ?", opts.Trigger)
	}

	if opts.IsActive != nil {
		where.Add("is_active = ?", *opts.IsActive)
	}

	if opts.Name != "" {
		where.Add("name ILIKE ?", "%"+escapeLike(opts.Name)+"%")
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflow_rules `+where.SQL(), where.Args()...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	limit := persistence.NormalizeLimit(opts.Limit)
	offset := persistence.NormalizeOffset(opts.Offset)

	query := `SELECT ` + ruleColumns + ` FROM workflow_rules ` + where.SQL() +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT %d OFFSET %d`, limit, offset)

	rules, err := r.query(ctx, query, where.Args()...)
	if err != nil {
		return nil, err
	}

	return &persistence.RuleListResult{
		Rules:       rules,
		TotalCount:  totalCount,
		HasNextPage: int64(offset+len(rules)) < totalCount,
	}, nil
}

func (r *RuleRepository) FindActiveByTrigger(ctx context.Context, trigger models.WorkflowTrigger) ([]*models.WorkflowRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM workflow_rules
		WHERE trigger_type = $1 AND is_active = true
		ORDER BY created_at, id
	`

	return r.query(ctx, query, trigger)
}

func (r *RuleRepository) query(ctx context.Context, query string, args ...any) ([]*models.WorkflowRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer sqlbase.CloseRows(ctx, r.logger, rows)

	rules := make([]*models.WorkflowRule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
