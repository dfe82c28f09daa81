package server

import (
	"strconv"
	"strings"

	"carmarket/internal/auth"
	"carmarket/internal/middleware"
	"carmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError answers err with the status its error code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
}

// caller returns the identity stored by AuthRequired. Routes using it are
// always mounted behind that middleware.
func caller(c *fiber.Ctx) auth.Identity {
	id, _ := middleware.Identity(c)
	return id
}

// queryInt parses an optional integer query parameter. Absent means nil.
func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, models.NewValidationError("Invalid " + name)
	}
	return &v, nil
}

// splitList splits a comma separated query value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
