package handlers

import (
	"fmt"

	"aidtrust/internal/adapters/http/middleware"
	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/pagination"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles application lifecycle endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// Submit creates a new application
// @Summary Submit application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitApplicationInput true "Application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /application [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var input services.SubmitApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	app, err := h.appService.Submit(c.Context(), middleware.ActorFrom(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Application submitted successfully.", app.ToResponse())
}

// GetByToken looks an application up by its public token
// @Summary Get application by token
// @Tags Applications
// @Produce json
// @Param token path string true "Lookup token"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /application/token/{token} [get]
func (h *ApplicationHandler) GetByToken(c *fiber.Ctx) error {
	app, err := h.appService.GetByToken(c.Context(), c.Params("token"))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Application retrieved successfully.", app.ToResponse())
}

// ListMine lists the caller's applications
// @Summary My applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /application/mine [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	apps, total, err := h.appService.ListMine(c.Context(), middleware.ActorFrom(c), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Applications retrieved successfully.", pagination.NewResponse(models.ToApplicationResponses(apps), page, total))
}

// Filter lists applications by query filters
// @Summary Filter applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Created on or after (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "Created on or before (YYYY-MM-DD or RFC 3339)"
// @Param country query string false "form.country"
// @Param city query string false "form.city"
// @Param category query string false "Category"
// @Param subCategory query string false "Sub category"
// @Param status query string false "Status"
// @Param officerId query int false "Assigned inquiry officer"
// @Param page query int false "Page number" default(1)
// @Param perPage query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/application/filter [get]
func (h *ApplicationHandler) Filter(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return response.FromError(c, err)
	}

	officerID := c.QueryInt("officerId", 0)
	if officerID < 0 {
		return response.BadRequest(c, "Invalid officerId.")
	}

	filter := repositories.ApplicationFilter{
		StartDate:   start,
		EndDate:     end,
		Country:     c.Query("country"),
		City:        c.Query("city"),
		Category:    c.Query("category"),
		SubCategory: c.Query("subCategory"),
		Status:      domain.Status(c.Query("status")),
		OfficerID:   uint(officerID),
	}
	page := pagination.GetParams(c)

	apps, total, err := h.appService.Filter(c.Context(), filter, page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Filtered applications retrieved successfully.", pagination.NewResponse(models.ToApplicationResponses(apps), page, total))
}

// ListForTrustee lists the committee review queue
// @Summary Trustee queue
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/application/trustee/applications [get]
func (h *ApplicationHandler) ListForTrustee(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	apps, total, err := h.appService.ListForTrustee(c.Context(), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Applications retrieved successfully.", pagination.NewResponse(models.ToApplicationResponses(apps), page, total))
}

// ListAssigned lists applications assigned to the calling inquiry officer
// @Summary Inquiry officer queue
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/application/inquiry/applications [get]
func (h *ApplicationHandler) ListAssigned(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	apps, total, err := h.appService.ListAssigned(c.Context(), middleware.ActorFrom(c), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Assigned applications retrieved successfully.", pagination.NewResponse(models.ToApplicationResponses(apps), page, total))
}

// GetDetail returns an application and its history
// @Summary Application detail
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/application/{id} [get]
func (h *ApplicationHandler) GetDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	detail, err := h.appService.GetDetail(c.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Application details and history retrieved successfully.", detail)
}

// History returns the audit trail of an application
// @Summary Application history
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/application/{id}/history [get]
func (h *ApplicationHandler) History(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	txs, err := h.appService.History(c.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Application history retrieved successfully.", models.ToTransactionResponses(txs))
}

// AssignOfficer assigns an inquiry officer
// @Summary Assign inquiry officer
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.AssignOfficerInput true "Officer"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/assign [patch]
func (h *ApplicationHandler) AssignOfficer(c *fiber.Ctx) error {
	var input services.AssignOfficerInput
	return h.transition(c, &input, "Inquiry officer assigned successfully.", func(id uint, actor domain.Actor) (*models.Application, error) {
		return h.appService.AssignOfficer(c.Context(), id, actor, &input)
	})
}

// SubmitInquiry records the inquiry report
// @Summary Submit inquiry report
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.InquiryReportInput true "Report"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/inquiry [patch]
func (h *ApplicationHandler) SubmitInquiry(c *fiber.Ctx) error {
	var input services.InquiryReportInput
	return h.transition(c, &input, "Inquiry report submitted successfully.", func(id uint, actor domain.Actor) (*models.Application, error) {
		return h.appService.SubmitInquiry(c.Context(), id, actor, &input)
	})
}

// Return sends an application back to the applicant
// @Summary Return application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.CommentsInput false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/return [patch]
func (h *ApplicationHandler) Return(c *fiber.Ctx) error {
	var input services.CommentsInput
	return h.transition(c, &input, "Application returned to user for additional information.", func(id uint, actor domain.Actor) (*models.Application, error) {
		return h.appService.Return(c.Context(), id, actor, &input)
	})
}

// Forward sends an application to the trustee committee
// @Summary Forward to committee
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.CommentsInput false "Comments"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/forward [patch]
func (h *ApplicationHandler) Forward(c *fiber.Ctx) error {
	var input services.CommentsInput
	return h.transition(c, &input, "Application forwarded to committee.", func(id uint, actor domain.Actor) (*models.Application, error) {
		return h.appService.Forward(c.Context(), id, actor, &input)
	})
}

// TrusteeReview records trustee comments and funding proposal
// @Summary Trustee review
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.TrusteeReviewInput true "Review"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/review [patch]
func (h *ApplicationHandler) TrusteeReview(c *fiber.Ctx) error {
	var input services.TrusteeReviewInput
	return h.transition(c, &input, "Trustee review recorded.", func(id uint, actor domain.Actor) (*models.Application, error) {
		return h.appService.TrusteeReview(c.Context(), id, actor, &input)
	})
}

// Decide applies an admin decision
// @Summary Decide application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.DecisionInput true "Decision (approved, rejected or hold)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/application/{id}/status [patch]
func (h *ApplicationHandler) Decide(c *fiber.Ctx) error {
	var input services.DecisionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	app, err := h.appService.Decide(c.Context(), id, middleware.ActorFrom(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fmt.Sprintf("Application marked as %s.", app.Status), app.ToResponse())
}

// AttachDocument adds a document reference to the caller's application
// @Summary Attach document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.AttachDocumentInput true "Document"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /application/{id}/documents [post]
func (h *ApplicationHandler) AttachDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.AttachDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	doc, err := h.appService.AttachDocument(c.Context(), id, middleware.ActorFrom(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Document uploaded successfully.", doc)
}

// ListDocuments lists the documents of an application
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/application/{id}/documents [get]
func (h *ApplicationHandler) ListDocuments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	docs, err := h.appService.ListDocuments(c.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Documents retrieved successfully.", docs)
}

// transition parses an optional body into input and the id route param,
// then runs apply
func (h *ApplicationHandler) transition(c *fiber.Ctx, input interface{}, msg string, apply func(id uint, actor domain.Actor) (*models.Application, error)) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(input); err != nil {
			return response.BadRequest(c, "Invalid request body.")
		}
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	app, err := apply(id, middleware.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, msg, app.ToResponse())
}
