package response

import (
	"github.com/gofiber/fiber/v2"

	apperrors "mealpay/internal/errors"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "Insufficient permissions")
}

// Domain writes a classified error with its code and field.
func Domain(c *fiber.Ctx, err *apperrors.DomainError) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
		"code":  err.Code,
		"field": err.Field,
	})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(err *apperrors.DomainError) int {
	switch err.Code {
	case apperrors.ErrOrderNotFound.Code:
		return fiber.StatusNotFound
	case apperrors.ErrForbidden.Code:
		return fiber.StatusForbidden
	case apperrors.ErrDuplicateOrder.Code:
		return fiber.StatusConflict
	case apperrors.ErrCalculation.Code:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}
