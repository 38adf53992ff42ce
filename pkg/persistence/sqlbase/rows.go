package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// CloseRows closes rows and logs a failure instead of returning it.
func CloseRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

// Where accumulates AND-ed predicates with numbered placeholders.
type Where struct {
	clauses []string
	args    []any
}

// Add appends a predicate; each "?" in clause becomes the next $n.
func (w *Where) Add(clause string, args ...any) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}

	w.clauses = append(w.clauses, clause)
}

// SQL renders the WHERE clause, or "" when nothing was added.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}

	return "WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}

// Next returns the placeholder that the next argument will take.
func (w *Where) Next() string {
	return fmt.Sprintf("$%d", len(w.args)+1)
}
