package server

import (
	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// Query params: sort (newest|oldest|most-voted|most-viewed), limit, offset.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	sort := c.Query("sort")

	posts, err := s.listingService.List(c.Context(), sort, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetFeaturedPosts handles GET /api/posts/featured
func (s *Server) GetFeaturedPosts(c *fiber.Ctx) error {
	posts, err := s.listingService.Featured(c.Context())
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// SearchPosts handles GET /api/posts/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.listingService.Search(c.Context(), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.listingService.GetPost(c.Context(), optionalUserID(c), postID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Code        string   `json:"code"`
		Language    string   `json:"language"`
		Tags        []string `json:"tags"`
		CategoryID  *uint    `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:    &userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Language:    req.Language,
		Tags:        req.Tags,
	})
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Code        *string  `json:"code"`
		Language    *string  `json:"language"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		ActorID:     currentUserID(c),
		PostID:      postID,
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Language:    req.Language,
		Tags:        req.Tags,
	})
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// VotePost handles POST /api/posts/:id/vote with body {"direction": "up"|"down"}
func (s *Server) VotePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Vote(c.Context(), currentUserID(c), postID, req.Direction)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
	})
}

// FavoritePost handles POST /api/posts/:id/favorite and returns the new total.
func (s *Server) FavoritePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	total, err := s.postService.Favorite(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"favorites": total})
}
