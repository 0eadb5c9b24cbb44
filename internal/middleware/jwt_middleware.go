package middleware

import (
	"errors"
	"strings"

	"bosma/internal/apperr"
	"bosma/internal/guard"
	"bosma/internal/models"
	"bosma/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// token's user must exist and be active; its current role is stored in the
// context.
func AuthRequired(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, apperr.ErrPermissionDenied) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Access denied",
					"error":   err.Error(),
				})
			}
			logger.Debug("JWT validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)

		return c.Next()
	}
}

// RequireRole lets a request through when the authenticated role ranks at or
// above minimum. It must run after AuthRequired.
func RequireRole(minimum models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := guard.AssertRole(CurrentActor(c).Role, minimum); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied",
				"error":   err.Error(),
			})
		}
		return c.Next()
	}
}

// CurrentActor returns the caller stored by AuthRequired.
func CurrentActor(c *fiber.Ctx) models.Actor {
	userID, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalRole).(models.Role)
	return models.Actor{UserID: userID, Role: role}
}
