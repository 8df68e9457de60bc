package middleware

import (
	"errors"
	"strings"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/jwt"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Gate.Authorize
const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalUser   = "user"
)

// Gate authenticates bearer tokens and authorizes by the stored role
type Gate struct {
	users  repositories.UserRepository
	secret string
}

// NewGate creates a new authorization gate
func NewGate(users repositories.UserRepository, secret string) *Gate {
	return &Gate{users: users, secret: secret}
}

// Authorize admits requests whose user currently holds one of roles.
// The role claimed inside the token is never trusted.
func (g *Gate) Authorize(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Extract token
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return response.FromError(c, domain.ErrNoToken)
		}

		// 2. Validate token
		claims, err := jwt.ValidateAccessToken(token, g.secret)
		if err != nil {
			return response.FromError(c, domain.ErrTokenInvalid)
		}

		// 3. Load the user the token names
		user, err := g.users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return response.FromError(c, domain.ErrUserNotFound)
			}
			return response.FromError(c, err)
		}

		// 4. Check the stored role
		if !user.Role.In(roles...) {
			return response.FromError(c, domain.ErrInsufficientRole)
		}

		// 5. Set user info in context
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)
		c.Locals(LocalUser, user)

		return c.Next()
	}
}

// bearerToken returns the credential of an "Authorization: Bearer <token>" header
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ActorFrom returns the authenticated caller of an authorized request
func ActorFrom(c *fiber.Ctx) domain.Actor {
	id, _ := c.Locals(LocalUserID).(uint)
	role, _ := c.Locals(LocalRole).(domain.Role)
	return domain.Actor{ID: id, Role: role, IPAddress: c.IP()}
}

// UserFrom returns the user loaded by Authorize, or nil
func UserFrom(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}
