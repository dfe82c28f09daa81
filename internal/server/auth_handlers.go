package server

import (
	"carmarket/internal/auth"
	"carmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) issue(c *fiber.Ctx, status int, user *models.User) error {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(authResponse{Token: token, User: *user})
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.auth.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return s.issue(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.issue(c, fiber.StatusOK, user)
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.auth.UserByID(c.UserContext(), caller(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
