package server

import (
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?category=&q=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.community.ListPosts(c.UserContext(), repository.PostQuery{
		Category: models.PostCategory(c.Query("category")),
		Search:   c.Query("q"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id. Every read counts as a view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	detail, err := s.community.ViewPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.community.CreatePost(c.UserContext(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title    *string              `json:"title"`
		Content  *string              `json:"content"`
		Category *models.PostCategory `json:"category"`
		Images   *[]string            `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.community.UpdatePost(c.UserContext(), caller(c), service.UpdatePostInput{
		PostID: c.Params("id"),
		Patch:  repository.PostPatch(req),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.community.DeletePost(c.UserContext(), caller(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like, toggling the caller's like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	post, err := s.community.TogglePostLike(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.community.ListComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

type commentRequest struct {
	Content string `json:"content"`
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := s.community.CreateComment(c.UserContext(), caller(c), service.CreateCommentInput{
		PostID:  c.Params("id"),
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := s.community.UpdateComment(c.UserContext(), caller(c), service.UpdateCommentInput{
		CommentID: c.Params("commentId"),
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.community.DeleteComment(c.UserContext(), caller(c), c.Params("commentId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment handles POST /api/posts/:id/comments/:commentId/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	comment, err := s.community.ToggleCommentLike(c.UserContext(), caller(c), c.Params("commentId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}
