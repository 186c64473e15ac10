package serverutils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors returned by handlers into a
// uniform JSON envelope instead of fiber's default text response.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		} else if strings.HasPrefix(err.Error(), "validation failed") {
			code = fiber.StatusBadRequest
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
