package server

import (
	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/me. Absent fields stay untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
		Status   *string `json:"status"`
		Theme    *string `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), service.UpdateProfileInput{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Status:   req.Status,
		Theme:    req.Theme,
	})
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetUserByUsername handles GET /api/users/by-username/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	profile, err := s.userService.GetProfileByUsername(c.Context(), username)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.listingService.ByAuthor(c.Context(), optionalUserID(c), userID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
