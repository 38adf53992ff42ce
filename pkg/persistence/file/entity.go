package file

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
)

// EntityRepository updates the "status" field of entity documents stored
// under entities/<type>/. Other fields are preserved.
type EntityRepository struct {
	store *Persistence
}

func entityDir(entityType models.EntityType) (string, bool) {
	if !entityType.IsValid() {
		return "", false
	}

	return "entities/" + string(entityType), true
}

func (r *EntityRepository) UpdateStatus(_ context.Context, entityType models.EntityType, id string, status string) error {
	dir, ok := entityDir(entityType)
	if !ok {
		return persistence.ErrUnknownEntityType
	}

	if !validID(id) {
		return persistence.ErrEntityNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	document := make(map[string]any)

	err := r.store.readJSON(dir, id, &document)
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.ErrEntityNotFound
	}

	if err != nil {
		return err
	}

	document["status"] = status
	document["updatedAt"] = time.Now().UTC()

	return r.store.writeJSON(dir, id, document)
}

// Put stores an entity document as is. The rest of the platform owns these
// documents; Put exists for seeding local data.
func (r *EntityRepository) Put(entityType models.EntityType, id string, document map[string]any) error {
	dir, ok := entityDir(entityType)
	if !ok {
		return persistence.ErrUnknownEntityType
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeJSON(dir, id, document)
}
