// Package service contains the application's business logic.
package service

import (
	"context"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/observability"
	"github.com/infmoney/omegahubsite/internal/repository"
)

// ModerationService is the single authority on who can see and do what.
// Ban state propagates at read time: repositories filter banned authors out
// of public listings, and this service answers the per-request questions the
// filters cannot (own-content access, write permissions, admin overrides).
type ModerationService struct {
	userRepo repository.UserRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(userRepo repository.UserRepository) *ModerationService {
	return &ModerationService{userRepo: userRepo}
}

// IsAdmin reports whether the user may use moderation and admin surfaces.
func (s *ModerationService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return user.IsAdminOrOwner(), nil
}

// CanView decides whether viewerID may see a post fetched directly by ID.
// Listings already exclude banned authors; a direct fetch still lets the
// banned author and moderators through.
func (s *ModerationService) CanView(ctx context.Context, viewerID uint, post *models.Post) (bool, error) {
	if post.AuthorID == nil {
		return true, nil
	}
	author, err := s.userRepo.GetByID(ctx, *post.AuthorID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return true, nil
		}
		return false, err
	}
	if !author.IsBanned {
		return true, nil
	}
	if viewerID == *post.AuthorID {
		return true, nil
	}
	return s.IsAdmin(ctx, viewerID)
}

// RequireActive loads the acting user and rejects banned accounts. All
// write paths (posting, commenting, voting) go through here first.
func (s *ModerationService) RequireActive(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		observability.ModerationDenials.WithLabelValues("write").Inc()
		return nil, models.NewForbiddenError("Account is banned")
	}
	return user, nil
}

// CanModify reports whether actorID may edit or delete content owned by
// ownerID. Owners of the content always can; otherwise it takes admin.
func (s *ModerationService) CanModify(ctx context.Context, actorID uint, ownerID *uint) (bool, error) {
	if ownerID != nil && *ownerID == actorID {
		return true, nil
	}
	isAdmin, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		return false, err
	}
	if !isAdmin {
		observability.ModerationDenials.WithLabelValues("modify").Inc()
	}
	return isAdmin, nil
}
