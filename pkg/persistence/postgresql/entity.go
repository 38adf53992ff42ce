package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
)

var entityTables = map[models.EntityType]string{
	models.EntityApplication: "applications",
	models.EntityCandidate:   "candidates",
	models.EntityJob:         "jobs",
}

type EntityRepository struct {
	db *sql.DB
}

func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) UpdateStatus(ctx context.Context, entityType models.EntityType, id string, status string) error {
	table, ok := entityTables[entityType]
	if !ok {
		return persistence.ErrUnknownEntityType
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", entityType, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrEntityNotFound
	}

	return nil
}
