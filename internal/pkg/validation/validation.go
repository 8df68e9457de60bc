package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"aidtrust/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("validation: register role tag: %v", err))
	}

	return v
}

// Struct validates s and returns a domain validation error describing the
// first failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalidf("Invalid request body.")
	}

	return domain.Invalidf("%s", message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email.", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	case "role":
		return "Invalid role."
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}
