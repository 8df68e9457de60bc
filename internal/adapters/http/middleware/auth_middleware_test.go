package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"aidtrust/internal/adapters/persistence/memstore"
	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/jwt"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gate-secret"

func newGateApp(t *testing.T, roles ...domain.Role) (*fiber.App, *memstore.Store) {
	t.Helper()
	logger.Log.SetOutput(io.Discard)

	store := memstore.New()
	gate := NewGate(store.Repos().Users, testSecret)

	app := fiber.New()
	app.Get("/protected", gate.Authorize(roles...), func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		return c.JSON(fiber.Map{"id": actor.ID, "role": actor.Role, "email": UserFrom(c).Email})
	})
	return app, store
}

func addUser(t *testing.T, store *memstore.Store, email string, role domain.Role) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test", Email: email, Role: role}
	require.NoError(t, store.Repos().Users.Create(context.Background(), u))
	return u
}

func token(t *testing.T, id uint, role domain.Role) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(id, "x@example.org", string(role), testSecret, 1)
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, app *fiber.App, authorization string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decodeError(t *testing.T, body []byte) response.Response {
	t.Helper()
	var r response.Response
	require.NoError(t, json.Unmarshal(body, &r))
	return r
}

func TestAuthorizeRejections(t *testing.T) {
	app, store := newGateApp(t, domain.RoleAdmin)
	applicant := addUser(t, store, "user@example.org", domain.RoleUser)

	tests := []struct {
		name          string
		authorization string
		status        int
		kind          string
		msg           string
	}{
		{"missing header", "", fiber.StatusUnauthorized, "unauthenticated", "Access denied. No token provided."},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "unauthenticated", "Access denied. No token provided."},
		{"garbage token", "Bearer abc.def.ghi", fiber.StatusUnauthorized, "unauthenticated", "Invalid token."},
		{"unknown user", "Bearer " + token(t, 999, domain.RoleAdmin), fiber.StatusNotFound, "not_found", "User not found."},
		{"claimed role ignored", "Bearer " + token(t, applicant.ID, domain.RoleAdmin), fiber.StatusForbidden, "forbidden", "Access denied. Insufficient permissions."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.authorization)
			assert.Equal(t, tt.status, status)

			r := decodeError(t, body)
			assert.True(t, r.Error)
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.msg, r.Msg)
		})
	}
}

func TestAuthorizeUsesStoredRole(t *testing.T) {
	app, store := newGateApp(t, domain.RoleAdmin)
	admin := addUser(t, store, "admin@example.org", domain.RoleAdmin)

	// token minted while the account was still a plain user
	status, body := call(t, app, "Bearer "+token(t, admin.ID, domain.RoleUser))
	require.Equal(t, fiber.StatusOK, status)

	var got struct {
		ID    uint        `json:"id"`
		Role  domain.Role `json:"role"`
		Email string      `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, admin.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, "admin@example.org", got.Email)
}

func TestAuthorizeRejectsOtherSecret(t *testing.T) {
	app, store := newGateApp(t, domain.RoleAdmin)
	admin := addUser(t, store, "admin@example.org", domain.RoleAdmin)

	forged, err := jwt.GenerateAccessToken(admin.ID, admin.Email, string(admin.Role), "another-secret", 1)
	require.NoError(t, err)

	status, _ := call(t, app, "Bearer "+forged)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestNoStore(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoStore(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))
}
