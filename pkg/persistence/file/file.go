// Package file provides file-based persistence for rules, executions and entity statuses.
//
// Layout under the root directory:
//
//	rules/<id>.json
//	executions/<id>.json
//	entities/<entity type>/<id>.json
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/hireflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system. One
// lock guards every directory so a rule delete and its execution cascade are
// atomic with respect to other callers in the same process.
type Persistence struct {
	root          string
	mu            sync.RWMutex
	ruleRepo      *RuleRepository
	executionRepo *ExecutionRepository
	entityRepo    *EntityRepository
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.ruleRepo = &RuleRepository{store: p}
	p.executionRepo = &ExecutionRepository{store: p}
	p.entityRepo = &EntityRepository{store: p}

	return p
}

func (p *Persistence) RuleRepository() persistence.RuleRepository {
	return p.ruleRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) EntityRepository() persistence.EntityRepository {
	return p.entityRepo
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); err != nil {
		return fmt.Errorf("file store root %s: %w", p.root, err)
	}

	return nil
}

func (p *Persistence) path(parts ...string) string {
	return filepath.Clean(filepath.Join(append([]string{p.root}, parts...)...))
}

func (p *Persistence) writeJSON(dir string, id string, value any) error {
	if err := os.MkdirAll(p.path(dir), 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", dir, id, err)
	}

	target := p.path(dir, id+".json")
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", dir, id, err)
	}

	return os.Rename(tmp, target)
}

// readJSON returns fs.ErrNotExist (wrapped by os) when the file is missing.
func (p *Persistence) readJSON(dir string, id string, value any) error {
	body, err := os.ReadFile(p.path(dir, id+".json"))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, value); err != nil {
		return fmt.Errorf("failed to unmarshal %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) listIDs(dir string) ([]string, error) {
	files, err := fs.Glob(os.DirFS(p.path(dir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func paginate[T any](items []T, limit, offset int) ([]T, bool) {
	limit = persistence.NormalizeLimit(limit)
	offset = persistence.NormalizeOffset(offset)

	if offset >= len(items) {
		return make([]T, 0), false
	}

	end := min(offset+limit, len(items))

	return items[offset:end], end < len(items)
}
