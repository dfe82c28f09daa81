// Package middleware provides the Fiber middleware chain of the API.
package middleware

import (
	"strings"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by the middleware chain.
const (
	LocalIdentity = "identity"
	LocalUserID   = "userID"
	LocalTraceID  = "traceID"
)

// AuthRequired rejects requests without a valid Bearer token. On success the
// caller's auth.Identity is stored in locals and the user id in the request
// context for logging.
func AuthRequired(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		id, err := tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals(LocalIdentity, id)
		c.Locals(LocalUserID, id.UserID)
		c.SetUserContext(observability.WithUserID(c.UserContext(), id.UserID))
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Identity returns the caller stored by AuthRequired.
func Identity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(auth.Identity)
	return id, ok
}
