package serverutils

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// SecretMiddleware guards the agent endpoints with a shared bearer
// secret. Callers send "Authorization: Bearer <AGENT_SERVICE_SECRET>".
func SecretMiddleware(ctx *fiber.Ctx) error {
	secret := os.Getenv("AGENT_SERVICE_SECRET")
	if secret == "" {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Service secret not configured"})
	}

	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	token := authHeader[7:]

	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	return ctx.Next()
}
