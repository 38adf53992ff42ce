package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukex/hireflow/pkg/actions"
	"github.com/dukex/hireflow/pkg/log"
	"github.com/dukex/hireflow/pkg/mocks"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence/file"
	"github.com/dukex/hireflow/pkg/services"
	"github.com/dukex/hireflow/pkg/web"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := log.NewTestLogger()
	store := file.NewPersistence(t.TempDir())

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	jobs := &mocks.MockJobQueue{}
	jobs.On("AddJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("job-1", nil).Maybe()

	executor := actions.NewExecutor(logger, bus, jobs, store.EntityRepository())
	engine := workflow.NewEngine(logger, store, bus, executor)
	rules := services.NewRules(logger, store, bus, engine)

	handlers := web.NewAPIHandlers(rules, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func ruleBody() web.CreateRuleRequest {
	return web.CreateRuleRequest{
		Name:    "Acknowledge application",
		Trigger: models.TriggerApplicationReceived,
		Conditions: []models.Condition{
			{Field: "candidate.email", Operator: models.OperatorIsNotEmpty},
		},
		Actions: []models.Action{
			{Type: models.ActionSendEmail, Config: &models.SendEmailConfig{To: "{{candidate.email}}", Subject: "Hi"}},
		},
		CreatedBy: "recruiter-1",
	}
}

func createRule(t *testing.T, app *fiber.App, body web.CreateRuleRequest) models.WorkflowRule {
	t.Helper()

	resp, data := doRequest(t, app, http.MethodPost, "/rules", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var rule models.WorkflowRule
	require.NoError(t, json.Unmarshal(data, &rule))

	return rule
}

func problemType(t *testing.T, data []byte) string {
	t.Helper()

	var problem map[string]any
	require.NoError(t, json.Unmarshal(data, &problem))

	kind, _ := problem["type"].(string)

	return kind
}

func TestAPIHandlers_CreateRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "successful creation",
			requestBody:    ruleBody(),
			expectedStatus: http.StatusCreated,
		},
		{
			name: "empty actions",
			requestBody: func() web.CreateRuleRequest {
				body := ruleBody()
				body.Actions = []models.Action{}

				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedType:   "ACTIONS_REQUIRED",
		},
		{
			name: "unknown trigger",
			requestBody: func() web.CreateRuleRequest {
				body := ruleBody()
				body.Trigger = "HIRED"

				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedType:   "UNKNOWN_TRIGGER",
		},
		{
			name: "missing createdBy",
			requestBody: func() web.CreateRuleRequest {
				body := ruleBody()
				body.CreatedBy = ""

				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)

			resp, data := doRequest(t, app, http.MethodPost, "/rules", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(data))

			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, problemType(t, data))
			}
		})
	}
}

func TestAPIHandlers_RuleLifecycle(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	rule := createRule(t, app, ruleBody())
	assert.True(t, rule.IsActive)

	resp, data := doRequest(t, app, http.MethodGet, "/rules/"+rule.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"name":"Acknowledge application"`)

	resp, data = doRequest(t, app, http.MethodPatch, "/rules/"+rule.ID, map[string]any{"name": "Acknowledge"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Contains(t, string(data), `"name":"Acknowledge"`)

	resp, data = doRequest(t, app, http.MethodPatch, "/rules/"+rule.ID, map[string]any{"actions": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ACTIONS_REQUIRED", problemType(t, data))

	resp, data = doRequest(t, app, http.MethodPost, "/rules/"+rule.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"isActive":false`)

	resp, data = doRequest(t, app, http.MethodGet, "/rules?isActive=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list web.RuleListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, 20, list.Pagination.Limit)

	resp, _ = doRequest(t, app, http.MethodDelete, "/rules/"+rule.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = doRequest(t, app, http.MethodGet, "/rules/"+rule.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "rule_not_found", problemType(t, data))
}

func TestAPIHandlers_GetRules_InvalidQuery(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doRequest(t, app, http.MethodGet, "/rules?limit=ten", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := doRequest(t, app, http.MethodGet, "/rules?trigger=HIRED", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_TRIGGER", problemType(t, data))
}

func TestAPIHandlers_ExecuteAndExecutions(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	rule := createRule(t, app, ruleBody())

	input := map[string]any{"input": map[string]any{"candidate": map[string]any{"email": "ada@example.com"}}}

	resp, data := doRequest(t, app, http.MethodPost, "/rules/"+rule.ID+"/execute", input)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var result workflow.ExecutionResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, models.ExecutionStatusCompleted, result.Status)
	require.Len(t, result.ActionResults, 1)
	assert.Equal(t, "job-1", result.ActionResults[0].Result["jobId"])

	resp, data = doRequest(t, app, http.MethodGet, "/executions/"+result.ExecutionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"COMPLETED"`)

	resp, data = doRequest(t, app, http.MethodGet, "/executions?ruleId="+rule.ID+"&status=COMPLETED", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list web.ExecutionListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.EqualValues(t, 1, list.TotalCount)

	resp, data = doRequest(t, app, http.MethodPost, "/executions/"+result.ExecutionID+"/retry", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state", problemType(t, data))

	resp, _ = doRequest(t, app, http.MethodPost, "/executions/"+result.ExecutionID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = doRequest(t, app, http.MethodGet, "/rules/"+rule.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats services.RuleStats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.EqualValues(t, 1, stats.Total)
	assert.InDelta(t, 1.0, stats.SuccessRate, 0.0001)

	resp, data = doRequest(t, app, http.MethodGet, "/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "execution_not_found", problemType(t, data))

	resp, _ = doRequest(t, app, http.MethodGet, "/executions?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_Approval(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	body := ruleBody()
	body.Conditions = nil
	body.Actions = []models.Action{
		{Type: models.ActionRequestApproval, Config: &models.RequestApprovalConfig{ApproverID: "hm-1"}},
		{Type: models.ActionMoveStage, Config: &models.MoveStageConfig{ApplicationID: "app-1", StageID: "offer"}, Order: 1},
	}
	rule := createRule(t, app, body)

	resp, data := doRequest(t, app, http.MethodPost, "/rules/"+rule.ID+"/execute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var pending workflow.ExecutionResult
	require.NoError(t, json.Unmarshal(data, &pending))
	require.Equal(t, models.ExecutionStatusPending, pending.Status)

	resp, _ = doRequest(t, app, http.MethodPost, "/executions/"+pending.ExecutionID+"/approval", map[string]any{"approved": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = doRequest(t, app, http.MethodPost, "/executions/"+pending.ExecutionID+"/approval",
		web.ApprovalRequest{Approved: false, ApproverID: "hm-1", Comment: "not yet"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var rejected workflow.ExecutionResult
	require.NoError(t, json.Unmarshal(data, &rejected))
	assert.Equal(t, models.ExecutionStatusCancelled, rejected.Status)
	assert.Equal(t, "approval rejected: not yet", rejected.Error)
}

func TestAPIHandlers_ExportImport(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	rule := createRule(t, app, ruleBody())

	resp, data := doRequest(t, app, http.MethodGet, "/rules/"+rule.ID+"/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), "trigger: APPLICATION_RECEIVED")

	resp, imported := doRequest(t, app, http.MethodPost, "/rules/import?format=yaml&createdBy=importer", string(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(imported))
	assert.Contains(t, string(imported), `"isActive":false`)
	assert.Contains(t, string(imported), `"createdBy":"importer"`)

	resp, data = doRequest(t, app, http.MethodGet, "/rules/"+rule.ID+"/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_FORMAT", problemType(t, data))

	resp, data = doRequest(t, app, http.MethodPost, "/rules/import", `{"name":"x","trigger":"OFFER_SENT","version":"0.9","actions":[{"type":"SEND_EMAIL"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_EXPORT_VERSION", problemType(t, data))
}

func TestAPIHandlers_Builder(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	body := map[string]any{
		"name":      "From canvas",
		"createdBy": "designer",
		"graph": map[string]any{
			"nodes": []any{
				map[string]any{"id": "t", "type": "trigger", "data": map[string]any{"trigger": "OFFER_SENT"}},
				map[string]any{"id": "a", "type": "action", "data": map[string]any{
					"type":   "NOTIFY_USER",
					"config": map[string]any{"userId": "u-1", "message": "Offer out"},
				}},
			},
			"edges": []any{},
		},
	}

	resp, data := doRequest(t, app, http.MethodPost, "/rules/builder", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	assert.Contains(t, string(data), `"trigger":"OFFER_SENT"`)

	body["graph"] = map[string]any{"nodes": []any{}}

	resp, _ = doRequest(t, app, http.MethodPost, "/rules/builder", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, data := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"healthy"`)
}
