package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oda/internal/config"
	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/services"
	"github.com/example/oda/internal/utils"
)

const (
	userContextKey  = "currentUserID"
	tokenContextKey = "currentToken"
)

// AuthMiddleware validates bearer tokens and loads the authenticated user
// ID into context. A token must both parse as a valid JWT and still be
// the user's live session token; logged-out tokens are rejected.
func AuthMiddleware(cfg *config.Config, tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		if !tokens.Valid(userID, parts[1]) {
			return fiber.NewError(fiber.StatusUnauthorized, "token revoked")
		}

		c.Locals(userContextKey, userID)
		c.Locals(tokenContextKey, parts[1])
		return c.Next()
	}
}

// StaffMiddleware rejects requests from users without staff privilege.
// Must run after AuthMiddleware.
func StaffMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if !user.Staff() {
			return fiber.NewError(fiber.StatusForbidden, "permission denied")
		}

		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// GetCurrentToken extracts the presented bearer token from context.
func GetCurrentToken(c *fiber.Ctx) (string, bool) {
	value := c.Locals(tokenContextKey)
	if value == nil {
		return "", false
	}

	if token, ok := value.(string); ok {
		return token, true
	}

	return "", false
}
