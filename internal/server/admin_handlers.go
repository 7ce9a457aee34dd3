package server

import (
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminDashboard handles GET /api/admin/dashboard
func (s *Server) AdminDashboard(c *fiber.Ctx) error {
	stats, err := s.adminService.Dashboard(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(stats)
}

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	rows, err := s.adminService.ListUsers(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": rows})
}

// AdminListPosts handles GET /api/admin/posts. Includes posts hidden from
// public listings.
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	posts, err := s.adminService.ListPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// AdminSetRole handles PUT /api/admin/users/:id/role
func (s *Server) AdminSetRole(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.SetRole(c.Context(), currentUserID(c), targetID, req.Role)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminAssignRoleByUsername handles PUT /api/admin/users/by-username/:username/role
func (s *Server) AdminAssignRoleByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	var req struct {
		Role        string  `json:"role"`
		CustomBadge *string `json:"custom_badge"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.AssignByUsername(c.Context(), currentUserID(c), username, req.Role, req.CustomBadge)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminBulkAssignRole handles PUT /api/admin/users/bulk-role with body
// {"user_ids": "1,2,3", "role": "vip"}. Outcomes are reported per target;
// tokens that do not parse come back as failed entries, not a failed batch.
func (s *Server) AdminBulkAssignRole(c *fiber.Ctx) error {
	var req struct {
		UserIDs string `json:"user_ids"`
		Role    string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var tokens []string
	for _, part := range strings.Split(req.UserIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}

	outcomes, err := s.adminService.BulkAssign(c.Context(), currentUserID(c), tokens, req.Role)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"results": outcomes})
}

// AdminSetProfile handles PUT /api/admin/users/:id/profile. Covers the
// admin-only fields: reputation, followers, custom title and badge.
func (s *Server) AdminSetProfile(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reputation  *int    `json:"reputation"`
		Followers   *int    `json:"followers"`
		CustomTitle *string `json:"custom_title"`
		CustomBadge *string `json:"custom_badge"`
		Bio         *string `json:"bio"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.SetProfile(c.Context(), currentUserID(c), targetID, service.SetProfileInput{
		Reputation:  req.Reputation,
		Followers:   req.Followers,
		CustomTitle: req.CustomTitle,
		CustomBadge: req.CustomBadge,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
	})
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminSetBan handles PUT /api/admin/users/:id/ban with body {"banned": bool}
func (s *Server) AdminSetBan(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.SetBan(c.Context(), currentUserID(c), targetID, req.Banned)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminTogglePin handles PUT /api/admin/posts/:id/pin with body
// {"pinned": bool}. Setting the current state again is a no-op success.
func (s *Server) AdminTogglePin(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.adminService.TogglePin(c.Context(), currentUserID(c), postID, req.Pinned)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":        post.ID,
		"is_pinned": post.IsPinned,
	})
}

// AdminToggleForumPin handles PUT /api/admin/forums/:id/pin with body
// {"pinned": bool}.
func (s *Server) AdminToggleForumPin(c *fiber.Ctx) error {
	forumID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	forum, err := s.adminService.ToggleForumPin(c.Context(), currentUserID(c), forumID, req.Pinned)
	if err != nil {
		return models.RespondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":        forum.ID,
		"is_pinned": forum.IsPinned,
	})
}
