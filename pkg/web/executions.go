package web

import (
	"fmt"
	"time"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	req, err := parseListExecutionsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.rules.ListExecutions(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ExecutionListResponse{
		Executions:  result.Executions,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
		Pagination: Pagination{
			Limit:  persistence.NormalizeLimit(req.Limit),
			Offset: persistence.NormalizeOffset(req.Offset),
		},
	})
}

// parseListExecutionsRequest reads ruleId, status, from, to (RFC 3339),
// limit and offset.
func parseListExecutionsRequest(c fiber.Ctx) (*services.ListExecutionsRequest, error) {
	req := &services.ListExecutionsRequest{
		RuleID: c.Query("ruleId"),
		Status: models.ExecutionStatus(c.Query("status")),
	}

	limit, offset, err := parsePage(c)
	if err != nil {
		return nil, err
	}

	req.Limit, req.Offset = limit, offset

	req.From, err = parseTime(c.Query("from"))
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}

	req.To, err = parseTime(c.Query("to"))
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	return req, nil
}

func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.rules.GetExecution(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) RetryExecution(c fiber.Ctx) error {
	result, err := h.rules.RetryExecution(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	execution, err := h.rules.CancelExecution(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) ProcessApproval(c fiber.Ctx) error {
	var req ApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.rules.ProcessApproval(c.Context(), c.Params("id"), services.ApprovalRequest{
		Approved:   req.Approved,
		ApproverID: req.ApproverID,
		Comment:    req.Comment,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}
