package validation

import (
	"testing"

	"aidtrust/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,role"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@example.org", Role: "trustee", Kind: "a"}))

	err := Struct(sample{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualError(t, err, "email is required.")

	err = Struct(sample{Email: "nope"})
	assert.EqualError(t, err, "email must be a valid email.")

	err = Struct(sample{Email: "a@example.org", Role: "king"})
	assert.EqualError(t, err, "Invalid role.")

	err = Struct(sample{Email: "a@example.org", Kind: "c"})
	assert.EqualError(t, err, "kind must be one of: a b.")
}

func TestNewValidatorRegistersRoleTag(t *testing.T) {
	assert.NotPanics(t, func() {
		v := newValidator()
		assert.Error(t, v.Var("king", "role"))
		assert.NoError(t, v.Var("admin", "role"))
	})
}
