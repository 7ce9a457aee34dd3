package server

import (
	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListForPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreatePostComment(c.Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetProfileComments handles GET /api/users/:id/comments
func (s *Server) GetProfileComments(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListForProfile(c.Context(), profileID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateProfileComment handles POST /api/users/:id/comments
func (s *Server) CreateProfileComment(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateProfileComment(c.Context(), currentUserID(c), profileID, req.Content)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), currentUserID(c), commentID); err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
