package server

import (
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StartConversation handles POST /api/chat/rooms
func (s *Server) StartConversation(c *fiber.Ctx) error {
	var req struct {
		CarID string `json:"carId"`
	}
	if err := c.BodyParser(&req); err != nil || req.CarID == "" {
		return badRequest(c, "carId is required")
	}

	room, err := s.chat.StartConversation(c.UserContext(), caller(c), req.CarID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRooms handles GET /api/chat/rooms
func (s *Server) GetRooms(c *fiber.Ctx) error {
	rooms, err := s.chat.Rooms(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rooms)
}

// GetMessages handles GET /api/chat/rooms/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	messages, err := s.chat.Transcript(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/chat/rooms/:id/messages. The response holds
// the caller's message and, when the seller is simulated, the seller's reply.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	sent, err := s.chat.Send(c.UserContext(), caller(c), service.SendMessageInput{
		RoomID: c.Params("id"),
		Text:   req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sent)
}

// MarkRead handles POST /api/chat/rooms/:id/read
func (s *Server) MarkRead(c *fiber.Ctx) error {
	if err := s.chat.MarkRead(c.UserContext(), caller(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
