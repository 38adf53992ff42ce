package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRule(id string, trigger models.WorkflowTrigger, active bool, createdAt time.Time) *models.WorkflowRule {
	return &models.WorkflowRule{
		ID:       id,
		Name:     "Rule " + id,
		Trigger:  trigger,
		IsActive: active,
		Conditions: []models.Condition{
			{Field: "score", Operator: models.OperatorGreaterThan, Value: float64(80)},
		},
		Actions: []models.Action{
			{Type: models.ActionSendEmail, Order: 0, Config: &models.SendEmailConfig{To: "{{candidate.email}}", Subject: "Hi"}},
		},
		CreatedBy: "user-1",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestNewPersistence(t *testing.T) {
	assert.Equal(t, "/tmp/test", NewPersistence("/tmp/test").root)
	assert.Equal(t, "/tmp/test", NewPersistence("file:///tmp/test").root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	assert.NoError(t, NewPersistence(t.TempDir()).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(filepath.Join(t.TempDir(), "missing")).HealthCheck(t.Context()))
	assert.NoError(t, NewPersistence(t.TempDir()).Close(t.Context()))
}

func TestRuleRepository_SaveAndGet(t *testing.T) {
	dir := t.TempDir()
	repo := NewPersistence(dir).RuleRepository()

	rule := newRule("rule-1", models.TriggerApplicationReceived, true, time.Time{})
	require.NoError(t, repo.Save(t.Context(), rule))

	assert.False(t, rule.CreatedAt.IsZero())
	assert.FileExists(t, filepath.Join(dir, "rules", "rule-1.json"))

	loaded, err := repo.GetByID(t.Context(), "rule-1")
	require.NoError(t, err)

	assert.Equal(t, rule.Name, loaded.Name)
	assert.Equal(t, rule.Trigger, loaded.Trigger)
	assert.Equal(t, rule.Conditions, loaded.Conditions)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, &models.SendEmailConfig{To: "{{candidate.email}}", Subject: "Hi"}, loaded.Actions[0].Config)
}

func TestRuleRepository_GetMissing(t *testing.T) {
	repo := NewPersistence(t.TempDir()).RuleRepository()

	_, err := repo.GetByID(t.Context(), "nope")
	assert.True(t, persistence.IsRuleNotFound(err))

	_, err = repo.GetByID(t.Context(), "../etc/passwd")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRuleRepository_DeleteCascadesExecutions(t *testing.T) {
	store := NewPersistence(t.TempDir())
	rules := store.RuleRepository()
	executions := store.ExecutionRepository()
	ctx := t.Context()

	require.NoError(t, rules.Save(ctx, newRule("rule-1", models.TriggerOfferSent, true, time.Time{})))
	require.NoError(t, rules.Save(ctx, newRule("rule-2", models.TriggerOfferSent, true, time.Time{})))

	for _, execution := range []*models.WorkflowExecution{
		{ID: "exec-1", RuleID: "rule-1", Status: models.ExecutionStatusCompleted},
		{ID: "exec-2", RuleID: "rule-1", Status: models.ExecutionStatusFailed},
		{ID: "exec-3", RuleID: "rule-2", Status: models.ExecutionStatusCompleted},
	} {
		require.NoError(t, executions.Save(ctx, execution))
	}

	require.NoError(t, rules.Delete(ctx, "rule-1"))

	_, err := rules.GetByID(ctx, "rule-1")
	assert.True(t, persistence.IsRuleNotFound(err))

	_, err = executions.GetByID(ctx, "exec-1")
	assert.True(t, persistence.IsExecutionNotFound(err))

	remaining, err := executions.GetByID(ctx, "exec-3")
	require.NoError(t, err)
	assert.Equal(t, "rule-2", remaining.RuleID)

	assert.True(t, persistence.IsRuleNotFound(rules.Delete(ctx, "rule-1")))
}

func TestRuleRepository_ListFiltersAndPaginates(t *testing.T) {
	repo := NewPersistence(t.TempDir()).RuleRepository()
	ctx := t.Context()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newRule("a", models.TriggerApplicationReceived, true, base)))
	require.NoError(t, repo.Save(ctx, newRule("b", models.TriggerApplicationReceived, false, base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, newRule("c", models.TriggerStageChanged, true, base.Add(2*time.Hour))))

	all, err := repo.List(ctx, persistence.ListRulesOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, []string{"c", "b", "a"}, ruleIDs(all.Rules))

	active := true
	filtered, err := repo.List(ctx, persistence.ListRulesOptions{Trigger: models.TriggerApplicationReceived, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ruleIDs(filtered.Rules))

	byName, err := repo.List(ctx, persistence.ListRulesOptions{Name: "RULE B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ruleIDs(byName.Rules))

	page, err := repo.List(ctx, persistence.ListRulesOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ruleIDs(page.Rules))
	assert.True(t, page.HasNextPage)

	last, err := repo.List(ctx, persistence.ListRulesOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ruleIDs(last.Rules))
	assert.False(t, last.HasNextPage)

	beyond, err := repo.List(ctx, persistence.ListRulesOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Rules)
	assert.Equal(t, int64(3), beyond.TotalCount)
}

func TestRuleRepository_ListEmptyStore(t *testing.T) {
	result, err := NewPersistence(t.TempDir()).RuleRepository().List(t.Context(), persistence.ListRulesOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Rules)
	assert.Zero(t, result.TotalCount)
}

func TestRuleRepository_FindActiveByTrigger(t *testing.T) {
	repo := NewPersistence(t.TempDir()).RuleRepository()
	ctx := t.Context()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newRule("late", models.TriggerInterviewCompleted, true, base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, newRule("early", models.TriggerInterviewCompleted, true, base)))
	require.NoError(t, repo.Save(ctx, newRule("off", models.TriggerInterviewCompleted, false, base)))
	require.NoError(t, repo.Save(ctx, newRule("other", models.TriggerOfferSent, true, base)))

	rules, err := repo.FindActiveByTrigger(ctx, models.TriggerInterviewCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, ruleIDs(rules))
}

func TestExecutionRepository_ListAndCount(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := t.Context()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	for i, status := range []models.ExecutionStatus{models.ExecutionStatusCompleted, models.ExecutionStatusFailed, models.ExecutionStatusCompleted, models.ExecutionStatusPending} {
		ruleID := "rule-1"
		if i == 3 {
			ruleID = "rule-2"
		}

		require.NoError(t, repo.Save(ctx, &models.WorkflowExecution{
			ID:         "exec-" + string(rune('a'+i)),
			RuleID:     ruleID,
			Status:     status,
			Input:      map[string]any{"i": float64(i)},
			ExecutedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	byRule, err := repo.List(ctx, persistence.ListExecutionsOptions{RuleID: "rule-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-c", "exec-b", "exec-a"}, executionIDs(byRule.Executions))

	failed, err := repo.List(ctx, persistence.ListExecutionsOptions{Status: models.ExecutionStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-b"}, executionIDs(failed.Executions))

	from := base.Add(time.Hour)
	to := base.Add(2 * time.Hour)
	window, err := repo.List(ctx, persistence.ListExecutionsOptions{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-c", "exec-b"}, executionIDs(window.Executions))

	counts, err := repo.CountByStatus(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, map[models.ExecutionStatus]int64{
		models.ExecutionStatusCompleted: 2,
		models.ExecutionStatusFailed:    1,
	}, counts)

	require.NoError(t, repo.DeleteByRule(ctx, "rule-1"))

	remaining, err := repo.List(ctx, persistence.ListExecutionsOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-d"}, executionIDs(remaining.Executions))
}

func TestExecutionRepository_RoundTripsOutput(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := t.Context()

	execution := &models.WorkflowExecution{
		ID:     "exec-1",
		RuleID: "rule-1",
		Status: models.ExecutionStatusPending,
		Input:  map[string]any{"applicationId": "app-1"},
		Output: &models.ExecutionOutput{
			ConditionsMet: true,
			ActionResults: []models.ActionResult{
				{ActionType: models.ActionRequestApproval, Order: 1, Success: true, Result: map[string]any{"awaitingApproval": true}},
			},
			Approval: &models.ApprovalState{ApproverID: "mgr-1", ResumeIndex: 2},
		},
	}

	require.NoError(t, repo.Save(ctx, execution))

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, loaded.Status)
	require.NotNil(t, loaded.Output)
	require.NotNil(t, loaded.Output.Approval)
	assert.Equal(t, 2, loaded.Output.Approval.ResumeIndex)
	assert.Equal(t, true, loaded.Output.ActionResults[0].Result["awaitingApproval"])

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestEntityRepository_UpdateStatus(t *testing.T) {
	dir := t.TempDir()
	store := NewPersistence(dir)
	ctx := t.Context()

	require.NoError(t, store.entityRepo.Put(models.EntityApplication, "app-1", map[string]any{
		"status":      "NEW",
		"candidateId": "cand-1",
	}))

	require.NoError(t, store.EntityRepository().UpdateStatus(ctx, models.EntityApplication, "app-1", "REVIEWING"))

	body, err := os.ReadFile(filepath.Join(dir, "entities", "application", "app-1.json"))
	require.NoError(t, err)

	var document map[string]any
	require.NoError(t, json.Unmarshal(body, &document))
	assert.Equal(t, "REVIEWING", document["status"])
	assert.Equal(t, "cand-1", document["candidateId"])

	err = store.EntityRepository().UpdateStatus(ctx, models.EntityCandidate, "cand-404", "HIRED")
	assert.ErrorIs(t, err, persistence.ErrEntityNotFound)

	err = store.EntityRepository().UpdateStatus(ctx, models.EntityType("team"), "t-1", "ACTIVE")
	assert.ErrorIs(t, err, persistence.ErrUnknownEntityType)
}

func ruleIDs(rules []*models.WorkflowRule) []string {
	ids := make([]string, len(rules))
	for i, rule := range rules {
		ids[i] = rule.ID
	}

	return ids
}

func executionIDs(executions []*models.WorkflowExecution) []string {
	ids := make([]string, len(executions))
	for i, execution := range executions {
		ids[i] = execution.ID
	}

	return ids
}
