package handlers

import (
	"aidtrust/internal/adapters/http/middleware"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/pagination"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the caller's own account
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /user/user/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	return response.Success(c, "User retrieved successfully.", middleware.UserFrom(c))
}

// UpdateProfile updates the caller's own profile
// @Summary Update profile
// @Description Update profile fields; empty fields keep their value. Returns the user and a fresh token.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /user/user/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	actor := middleware.ActorFrom(c)
	result, err := h.userService.UpdateProfile(c.Context(), actor.ID, &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Profile updated successfully.", result)
}

// ListUsers lists every user
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/user/get-all-users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Users retrieved successfully.", pagination.NewResponse(users, page, total))
}

// ListByRole lists users holding a role
// @Summary List users by role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role path string true "Role"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/user/role/{role} [get]
func (h *UserHandler) ListByRole(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	users, total, err := h.userService.ListByRole(c.Context(), c.Params("role"), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Users retrieved successfully.", pagination.NewResponse(users, page, total))
}

// CreateUser creates a privileged account
// @Summary Create privileged user
// @Description Create a department-hod, trustee, inquiry-officer or admin account. Only admins may create admins.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/user/create-user [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	user, err := h.userService.CreateUser(c.Context(), middleware.ActorFrom(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "User created successfully.", user)
}
