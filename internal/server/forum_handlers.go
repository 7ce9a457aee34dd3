package server

import (
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetForums handles GET /api/forums
func (s *Server) GetForums(c *fiber.Ctx) error {
	forums, err := s.forumRepo.ListForums(c.Context())
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"forums": forums})
}

// GetForum handles GET /api/forums/:id
func (s *Server) GetForum(c *fiber.Ctx) error {
	forumID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	forum, err := s.forumRepo.GetForum(c.Context(), forumID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(forum)
}

// GetCategoryPosts handles GET /api/forums/categories/:id/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	categoryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.forumRepo.GetCategory(c.Context(), categoryID); err != nil {
		return models.RespondWithServiceError(c, err)
	}

	p := parsePagination(c, 20)
	posts, err := s.listingService.ByCategory(c.Context(), categoryID, c.Query("sort"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// CreateForum handles POST /api/admin/forums
func (s *Server) CreateForum(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Forum name is required"))
	}

	forum := &models.Forum{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.forumRepo.CreateForum(c.Context(), forum); err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(forum)
}

// CreateCategory handles POST /api/admin/forums/:id/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	forumID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Category name is required"))
	}

	category := &models.Category{
		ForumID:     forumID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.forumRepo.CreateCategory(c.Context(), category); err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
