package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxQuestionLen = 2000

// Ask handles POST /api/assistant/ask. It always answers 200 with a reply,
// canned when the text model is unavailable.
func (s *Server) Ask(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return badRequest(c, "Message is required")
	}
	if len([]rune(msg)) > maxQuestionLen {
		return badRequest(c, "Message too long (max 2000 characters)")
	}

	return c.JSON(fiber.Map{"reply": s.assistant.Ask(c.UserContext(), msg)})
}
