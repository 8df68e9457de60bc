package handlers

import (
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles password and social sign-in
// @Summary Login
// @Description Sign in with email and password, or with fullname and email for social accounts. First-time social sign-ins are registered as users.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /user/user/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Login successful.", result)
}
