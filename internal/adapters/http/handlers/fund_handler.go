package handlers

import (
	"aidtrust/internal/adapters/http/middleware"
	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FundHandler handles fund ledger endpoints
type FundHandler struct {
	fundService *services.FundService
}

// NewFundHandler creates a new fund handler
func NewFundHandler(fundService *services.FundService) *FundHandler {
	return &FundHandler{fundService: fundService}
}

// Disburse issues a fund against an approved application
// @Summary Disburse fund
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DisburseInput true "Fund"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/funds [post]
func (h *FundHandler) Disburse(c *fiber.Ctx) error {
	var input services.DisburseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	fund, err := h.fundService.Disburse(c.Context(), middleware.ActorFrom(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Fund added successfully.", fund.ToResponse())
}

// Get returns a fund
// @Summary Get fund
// @Tags Funds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fund ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/funds/{id} [get]
func (h *FundHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	fund, err := h.fundService.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Fund details retrieved successfully.", fund.ToResponse())
}

// Totals sums spending within a date range
// @Summary Spending totals
// @Tags Funds
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "From (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string true "To, inclusive (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/funds/total [get]
func (h *FundHandler) Totals(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if start == nil || end == nil {
		return response.BadRequest(c, "Start date and end date are required.")
	}

	totals, err := h.fundService.Totals(c.Context(), *start, *end)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Total spending calculated successfully.", totals)
}

// UpdateDocuments updates cheque details and scanned documents
// @Summary Update fund documents
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fund ID"
// @Param body body services.UpdateFundInput true "Documents"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/funds/{id} [patch]
func (h *FundHandler) UpdateDocuments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.UpdateFundInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	fund, err := h.fundService.UpdateDocuments(c.Context(), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Fund updated successfully.", fund.ToResponse())
}

// List lists funds by query filters
// @Summary List funds
// @Tags Funds
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Created on or after"
// @Param endDate query string false "Created on or before"
// @Param fundType query string false "one-time or recurring"
// @Param frequency query string false "monthly or seasonal"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/funds [get]
func (h *FundHandler) List(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return response.FromError(c, err)
	}

	filter := repositories.FundFilter{
		FundType:  domain.FundType(c.Query("fundType")),
		Frequency: domain.Frequency(c.Query("frequency")),
	}
	// The date range applies only when both ends are given
	if start != nil && end != nil {
		filter.StartDate, filter.EndDate = start, end
	}

	funds, err := h.fundService.List(c.Context(), filter)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Funds retrieved successfully.", models.ToFundResponses(funds))
}
