package api

import (
	"strings"

	domain "github.com/example/task-admin/domain/task"
	"github.com/gofiber/fiber/v2"
)

// respond writes a success envelope.
func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// respondAffected writes a success envelope for batch mutations.
func respondAffected(c *fiber.Ctx, affected int, message string) error {
	return c.JSON(Envelope{
		Success:       true,
		Message:       message,
		AffectedCount: &affected,
	})
}

// respondErr classifies the error and writes a failure envelope.
func respondErr(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(Envelope{
		Success: false,
		Message: err.Error(),
	})
}

// respondBadRequest writes a 400 failure envelope with a fixed message.
func respondBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		Success: false,
		Message: message,
	})
}

// statusFor maps service errors to HTTP status codes. Errors that
// crossed the transport arrive as plain strings, so classification
// falls back to the message markers every module uses.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return fiber.StatusBadRequest
	case domain.IsNotFound(err):
		return fiber.StatusNotFound
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "denied"):
		return fiber.StatusForbidden
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "no responders"),
		strings.Contains(msg, "unavailable"):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
