// Package web provides HTTP handlers and REST API endpoints for rule management.
package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	rules     *services.Rules
	validator *validator.Validate
}

func NewAPIHandlers(rules *services.Rules, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		rules:     rules,
		validator: validator,
	}
}

// Register mounts every rule and execution endpoint on router.
func (h *APIHandlers) Register(router fiber.Router) {
	r := router.Group("/rules")
	r.Get("/", h.GetRules)
	r.Post("/", h.CreateRule)
	r.Post("/import", h.ImportRule)
	r.Post("/builder", h.CreateRuleFromBuilder)
	r.Get("/:id", h.GetRule)
	r.Patch("/:id", h.UpdateRule)
	r.Delete("/:id", h.DeleteRule)
	r.Post("/:id/toggle", h.ToggleRule)
	r.Post("/:id/execute", h.ExecuteRule)
	r.Get("/:id/export", h.ExportRule)
	r.Get("/:id/stats", h.GetRuleStats)

	e := router.Group("/executions")
	e.Get("/", h.GetExecutions)
	e.Get("/:id", h.GetExecution)
	e.Post("/:id/retry", h.RetryExecution)
	e.Post("/:id/cancel", h.CancelExecution)
	e.Post("/:id/approval", h.ProcessApproval)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.rules.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Hireflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Hireflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	req, err := parseListRulesRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.rules.ListRules(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(RuleListResponse{
		Rules:       result.Rules,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
		Pagination: Pagination{
			Limit:  persistence.NormalizeLimit(req.Limit),
			Offset: persistence.NormalizeOffset(req.Offset),
		},
	})
}

func parseListRulesRequest(c fiber.Ctx) (*services.ListRulesRequest, error) {
	req := &services.ListRulesRequest{
		Trigger: models.WorkflowTrigger(c.Query("trigger")),
		Name:    c.Query("name"),
	}

	limit, offset, err := parsePage(c)
	if err != nil {
		return nil, err
	}

	req.Limit, req.Offset = limit, offset

	if activeStr := c.Query("isActive"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return nil, err
		}

		req.IsActive = &active
	}

	return req, nil
}

func parsePage(c fiber.Ctx) (int, int, error) {
	var limit, offset int

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}

		limit = parsed
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}

		offset = parsed
	}

	return limit, offset, nil
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	rule, err := h.rules.GetRule(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.rules.CreateRule(c.Context(), services.CreateRuleRequest{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		IsActive:    req.IsActive,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	var req UpdateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.rules.UpdateRule(c.Context(), c.Params("id"), services.UpdateRuleRequest{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	err := h.rules.DeleteRule(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ToggleRule(c fiber.Ctx) error {
	rule, err := h.rules.ToggleRule(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) ExecuteRule(c fiber.Ctx) error {
	var req ExecuteRuleRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.rules.ExecuteRule(c.Context(), c.Params("id"), req.Input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ExportRule(c fiber.Ctx) error {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		return handleServiceError(c, err)
	}

	data, err := h.rules.ExportRule(c.Context(), c.Params("id"), format)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())

	return c.Send(data)
}

// ImportRule reads an export document from the raw body. The format comes
// from ?format=, falling back to the Content-Type.
func (h *APIHandlers) ImportRule(c fiber.Ctx) error {
	formatStr := c.Query("format")
	if formatStr == "" && strings.Contains(c.Get(fiber.HeaderContentType), "yaml") {
		formatStr = string(services.FormatYAML)
	}

	format, err := services.ParseExportFormat(formatStr)
	if err != nil {
		return handleServiceError(c, err)
	}

	isActive := false

	if activeStr := c.Query("isActive"); activeStr != "" {
		isActive, err = strconv.ParseBool(activeStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+err.Error())
		}
	}

	rule, err := h.rules.ImportRule(c.Context(), services.ImportRequest{
		Data:      c.Body(),
		Format:    format,
		CreatedBy: c.Query("createdBy"),
		IsActive:  isActive,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) CreateRuleFromBuilder(c fiber.Ctx) error {
	var req BuilderRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.rules.CreateRuleFromBuilder(c.Context(), services.BuilderRequest{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		CreatedBy:   req.CreatedBy,
		Graph:       req.Graph,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) GetRuleStats(c fiber.Ctx) error {
	stats, err := h.rules.Stats(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}
