package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/persistence/sqlbase"
)

const executionColumns = `
	id
  , rule_id
  , status
  , input
  , output
  , error
  , retry_of
  , executed_at
  , updated_at
`

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution  models.WorkflowExecution
		inputJSON  []byte
		outputJSON []byte
		retryOf    sql.NullString
	)

	err := row.Scan(
		&execution.ID,
		&execution.RuleID,
		&execution.Status,
		&inputJSON,
		&outputJSON,
		&execution.Error,
		&retryOf,
		&execution.ExecutedAt,
		&execution.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(inputJSON, &execution.Input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input of execution %s: %w", execution.ID, err)
	}

	if outputJSON != nil {
		if err := json.Unmarshal(outputJSON, &execution.Output); err != nil {
			return nil, fmt.Errorf("failed to unmarshal output of execution %s: %w", execution.ID, err)
		}
	}

	execution.RetryOf = retryOf.String
	execution.ExecutedAt = execution.ExecutedAt.UTC()
	execution.UpdatedAt = execution.UpdatedAt.UTC()

	return &execution, nil
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	now := time.Now().UTC()
	if execution.ExecutedAt.IsZero() {
		execution.ExecutedAt = now
	}

	if execution.UpdatedAt.IsZero() {
		execution.UpdatedAt = now
	}

	input := execution.Input
	if input == nil {
		input = map[string]any{}
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("failed to marshal input: %w", err))
	}

	var outputJSON []byte

	if execution.Output != nil {
		outputJSON, err = json.Marshal(execution.Output)
		if err != nil {
			return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("failed to marshal output: %w", err))
		}
	}

	retryOf := sql.NullString{String: execution.RetryOf, Valid: execution.RetryOf != ""}

	query := `
		INSERT INTO workflow_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			output = EXCLUDED.output,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.RuleID,
		execution.Status,
		inputJSON,
		outputJSON,
		execution.Error,
		retryOf,
		execution.ExecutedAt,
		execution.UpdatedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+executionColumns+` FROM workflow_executions WHERE id = $1`, id)

	execution, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) (*persistence.ExecutionListResult, error) {
	var where sqlbase.Where

	if opts.RuleID != "" {
		where.Add("rule_id = ?", opts.RuleID)
	}

	if opts.Status != "" {
		where.Add("status = ?", opts.Status)
	}

	if opts.From != nil {
		where.Add("executed_at >= ?", *opts.From)
	}

	if opts.To != nil {
		where.Add("executed_at <= ?", *opts.To)
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflow_executions `+where.SQL(), where.Args()...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	limit := persistence.NormalizeLimit(opts.Limit)
	offset := persistence.NormalizeOffset(opts.Offset)

	query := `SELECT ` + executionColumns + ` FROM workflow_executions ` + where.SQL() +
		fmt.Sprintf(` ORDER BY executed_at DESC, id LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer sqlbase.CloseRows(ctx, r.logger, rows)

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return &persistence.ExecutionListResult{
		Executions:  executions,
		TotalCount:  totalCount,
		HasNextPage: int64(offset+len(executions)) < totalCount,
	}, nil
}

func (r *ExecutionRepository) DeleteByRule(ctx context.Context, ruleID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflow_executions WHERE rule_id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete executions of rule %s: %w", ruleID, err)
	}

	return nil
}

func (r *ExecutionRepository) CountByStatus(ctx context.Context, ruleID string) (map[models.ExecutionStatus]int64, error) {
	var where sqlbase.Where

	if ruleID != "" {
		where.Add("rule_id = ?", ruleID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM workflow_executions `+where.SQL()+` GROUP BY status`,
		where.Args()...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	defer sqlbase.CloseRows(ctx, r.logger, rows)

	counts := make(map[models.ExecutionStatus]int64)

	for rows.Next() {
		var (
			status models.ExecutionStatus
			count  int64
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan execution count: %w", err)
		}

		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution counts: %w", err)
	}

	return counts, nil
}
