package response

import (
	"errors"

	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Error bool        `json:"error"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Kind  string      `json:"kind,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Error: false,
		Msg:   message,
		Data:  data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Error: false,
		Msg:   message,
		Data:  data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, kind, message string) error {
	return c.Status(statusCode).JSON(Response{
		Error: true,
		Msg:   message,
		Kind:  kind,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "validation", message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "unauthenticated", message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "forbidden", message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, "not_found", message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, "conflict", message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "internal", message)
}

// FromError maps a service error to its response by kind.
// Messages of internal errors are logged, never sent to the client.
func FromError(c *fiber.Ctx, err error) error {
	var derr *domain.Error
	msg := "Internal server error."
	if errors.As(err, &derr) {
		msg = derr.Error()
	}

	switch domain.KindName(err) {
	case "unauthenticated":
		return Unauthorized(c, msg)
	case "forbidden":
		return Forbidden(c, msg)
	case "not_found":
		return NotFound(c, msg)
	case "validation":
		return BadRequest(c, msg)
	case "conflict":
		return Conflict(c, msg)
	}

	logger.Log.WithError(err).
		WithField("method", c.Method()).
		WithField("path", c.Path()).
		Error("❌ Request failed")
	return InternalServerError(c, "Internal server error.")
}
