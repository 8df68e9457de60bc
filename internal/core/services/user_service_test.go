package services

import (
	"context"
	"testing"

	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, users, _ := newAuthServices(t)
	ctx := context.Background()
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	hod := domain.Actor{ID: 2, Role: domain.RoleDepartmentHOD}

	input := func(role domain.Role, email string) *CreateUserInput {
		return &CreateUserInput{FullName: "Staff", Email: email, Role: role, Password: "long-enough"}
	}

	created, err := users.CreateUser(ctx, hod, input(domain.RoleTrustee, "Trustee@Example.org"))
	require.NoError(t, err)
	assert.Equal(t, "trustee@example.org", created.Email)
	assert.NotEqual(t, "long-enough", created.Password)

	_, err = users.CreateUser(ctx, hod, input(domain.RoleAdmin, "admin2@example.org"))
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = users.CreateUser(ctx, admin, input(domain.RoleAdmin, "admin2@example.org"))
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, admin, input(domain.RoleUser, "plain@example.org"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = users.CreateUser(ctx, admin, input(domain.RoleTrustee, "trustee@example.org"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	short := input(domain.RoleTrustee, "short@example.org")
	short.Password = "abc"
	_, err = users.CreateUser(ctx, admin, short)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	trustees, total, err := users.ListByRole(ctx, "trustee", pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, created.ID, trustees[0].ID)

	_, _, err = users.ListByRole(ctx, "king", pagination.New(1, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, total, err = users.List(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestUpdateProfileKeepsEmptyFields(t *testing.T) {
	auth, users, _ := newAuthServices(t)
	ctx := context.Background()

	login, err := auth.Login(ctx, &LoginInput{FullName: "Bilal", Email: "bilal@example.org"})
	require.NoError(t, err)

	result, err := users.UpdateProfile(ctx, login.User.ID, &UpdateProfileInput{City: "Multan", Country: "PK"})
	require.NoError(t, err)
	assert.Equal(t, "Bilal", result.User.FullName)
	assert.Equal(t, "Multan", result.User.City)
	assert.NotEmpty(t, result.Token)

	stored, err := users.GetByID(ctx, login.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "PK", stored.Country)

	_, err = users.UpdateProfile(ctx, 999, &UpdateProfileInput{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
