package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflow_executions", "workflow_rules", "applications", "candidates", "jobs", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("hireflow_test"),
			postgres.WithUsername("hireflow"),
			postgres.WithPassword("hireflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = store.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return store, ctx, databaseURL
}

func newRule(name string, trigger models.WorkflowTrigger, active bool, createdAt time.Time) *models.WorkflowRule {
	return &models.WorkflowRule{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "rule " + name,
		Trigger:     trigger,
		IsActive:    active,
		Conditions: []models.Condition{
			{Field: "candidate.source", Operator: models.OperatorInList, Value: []any{"referral", "agency"}},
		},
		Actions: []models.Action{
			{Type: models.ActionNotifyUser, Order: 1, Config: &models.NotifyUserConfig{UserID: "recruiter-1", Message: "New referral"}},
			{Type: models.ActionMoveStage, Order: 0, StopOnFailure: true, Config: &models.MoveStageConfig{ApplicationID: "{{applicationId}}", StageID: "screen"}},
		},
		CreatedBy: "user-1",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)

	require.NoError(t, store.HealthCheck(ctx))

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	for _, table := range []string{"workflow_rules", "workflow_executions", "applications", "candidates", "jobs"} {
		var exists bool
		err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestRuleRepository_SaveGetDelete(t *testing.T) {
	store, ctx, _ := setupTestDB(t)
	repo := store.RuleRepository()

	rule := newRule("Referral fast track", models.TriggerApplicationReceived, true, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, rule))

	loaded, err := repo.GetByID(ctx, rule.ID)
	require.NoError(t, err)

	assert.Equal(t, rule.Name, loaded.Name)
	assert.Equal(t, rule.Description, loaded.Description)
	assert.Equal(t, rule.Trigger, loaded.Trigger)
	assert.Equal(t, rule.Conditions, loaded.Conditions)
	assert.Equal(t, rule.Actions, loaded.Actions)
	assert.True(t, rule.CreatedAt.Equal(loaded.CreatedAt))

	rule.Name = "Renamed"
	rule.IsActive = false
	require.NoError(t, repo.Save(ctx, rule))

	loaded, err = repo.GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.False(t, loaded.IsActive)

	require.NoError(t, repo.Delete(ctx, rule.ID))

	_, err = repo.GetByID(ctx, rule.ID)
	assert.True(t, persistence.IsRuleNotFound(err))
	assert.True(t, persistence.IsRuleNotFound(repo.Delete(ctx, rule.ID)))
}

func TestRuleRepository_ListAndFindActive(t *testing.T) {
	store, ctx, _ := setupTestDB(t)
	repo := store.RuleRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := newRule("Welcome email", models.TriggerApplicationReceived, true, base)
	second := newRule("Archive 100% rejected", models.TriggerApplicationReceived, false, base.Add(time.Hour))
	third := newRule("Offer follow-up", models.TriggerOfferSent, true, base.Add(2*time.Hour))

	for _, rule := range []*models.WorkflowRule{first, second, third} {
		require.NoError(t, repo.Save(ctx, rule))
	}

	all, err := repo.List(ctx, persistence.ListRulesOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.True(t, all.HasNextPage)
	require.Len(t, all.Rules, 2)
	assert.Equal(t, third.ID, all.Rules[0].ID)

	byName, err := repo.List(ctx, persistence.ListRulesOptions{Name: "100%"})
	require.NoError(t, err)
	require.Len(t, byName.Rules, 1)
	assert.Equal(t, second.ID, byName.Rules[0].ID)

	active := true
	activeOnly, err := repo.List(ctx, persistence.ListRulesOptions{IsActive: &active, Trigger: models.TriggerApplicationReceived})
	require.NoError(t, err)
	require.Len(t, activeOnly.Rules, 1)
	assert.Equal(t, first.ID, activeOnly.Rules[0].ID)

	matched, err := repo.FindActiveByTrigger(ctx, models.TriggerApplicationReceived)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, first.ID, matched[0].ID)
}

func TestExecutionRepository_CascadeAndCounts(t *testing.T) {
	store, ctx, _ := setupTestDB(t)
	rules := store.RuleRepository()
	executions := store.ExecutionRepository()

	rule := newRule("Scored", models.TriggerScoreCalculated, true, time.Time{})
	require.NoError(t, rules.Save(ctx, rule))

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	statuses := []models.ExecutionStatus{models.ExecutionStatusCompleted, models.ExecutionStatusFailed, models.ExecutionStatusCompleted}
	ids := make([]string, len(statuses))

	for i, status := range statuses {
		ids[i] = uuid.New().String()

		require.NoError(t, executions.Save(ctx, &models.WorkflowExecution{
			ID:         ids[i],
			RuleID:     rule.ID,
			Status:     status,
			Input:      map[string]any{"score": float64(90)},
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	failed, err := executions.GetByID(ctx, ids[1])
	require.NoError(t, err)
	failed.Status = models.ExecutionStatusCancelled
	failed.Error = "cancelled by user"
	failed.Output = &models.ExecutionOutput{ConditionsMet: true, ExecutionTimeMs: 12}
	require.NoError(t, executions.Save(ctx, failed))

	reloaded, err := executions.GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCancelled, reloaded.Status)
	assert.Equal(t, int64(12), reloaded.Output.ExecutionTimeMs)
	assert.Equal(t, float64(90), reloaded.Input["score"])

	from := base.Add(time.Minute)
	list, err := executions.List(ctx, persistence.ListExecutionsOptions{RuleID: rule.ID, From: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, ids[2], list.Executions[0].ID)

	counts, err := executions.CountByStatus(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.ExecutionStatus]int64{
		models.ExecutionStatusCompleted: 2,
		models.ExecutionStatusCancelled: 1,
	}, counts)

	require.NoError(t, rules.Delete(ctx, rule.ID))

	_, err = executions.GetByID(ctx, ids[0])
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestEntityRepository_UpdateStatus(t *testing.T) {
	store, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, "INSERT INTO applications (id, status) VALUES ('app-1', 'NEW')")
	require.NoError(t, err)

	require.NoError(t, store.EntityRepository().UpdateStatus(ctx, models.EntityApplication, "app-1", "REVIEWING"))

	var status string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT status FROM applications WHERE id = 'app-1'").Scan(&status))
	assert.Equal(t, "REVIEWING", status)

	err = store.EntityRepository().UpdateStatus(ctx, models.EntityJob, "job-404", "CLOSED")
	assert.ErrorIs(t, err, persistence.ErrEntityNotFound)

	err = store.EntityRepository().UpdateStatus(ctx, models.EntityType("team"), "t-1", "ACTIVE")
	assert.ErrorIs(t, err, persistence.ErrUnknownEntityType)
}
