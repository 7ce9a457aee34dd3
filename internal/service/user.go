package service

import (
	"context"
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"
	"github.com/infmoney/omegahubsite/validation"

	"gorm.io/gorm"
)

// ProfileView is a user profile prepared for display: the user row, the
// resolved badge ribbon and content stats.
type ProfileView struct {
	User   models.User       `json:"user"`
	Badges []models.BadgeTag `json:"badges"`
	Stats  UserStats         `json:"stats"`
}

// UserStats aggregates one user's contribution footprint.
type UserStats struct {
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
	TotalViews   int64 `json:"total_views"`
	TotalUpvotes int64 `json:"total_upvotes"`
	Reputation   int   `json:"reputation"`
}

// UpdateProfileInput carries the self-service profile fields. Nil means
// unchanged; admin-only fields (reputation, badges, titles) are not here.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
	Avatar   *string
	Status   *string
	Theme    *string
}

// UserService serves public profile views and self-service profile edits.
type UserService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	db          *gorm.DB
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	db *gorm.DB,
) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo, commentRepo: commentRepo, db: db}
}

// GetProfile assembles a profile view for any user, banned or not. The
// profile page itself stays reachable; only the user's content is hidden
// from listings while banned.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.statsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		User:   *user,
		Badges: models.ResolveBadges(user),
		Stats:  *stats,
	}, nil
}

// GetProfileByUsername is GetProfile addressed by name.
func (s *UserService) GetProfileByUsername(ctx context.Context, username string) (*ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, user.ID)
}

func (s *UserService) statsFor(ctx context.Context, user *models.User) (*UserStats, error) {
	stats := &UserStats{Reputation: user.Reputation}
	var err error
	if stats.PostCount, err = s.postRepo.CountByAuthor(ctx, user.ID); err != nil {
		return nil, err
	}
	if stats.CommentCount, err = s.commentRepo.CountByAuthor(ctx, user.ID); err != nil {
		return nil, err
	}
	type sums struct {
		Views   int64 `json:"views"`
		Upvotes int64 `json:"upvotes"`
	}
	var row sums
	err = s.db.WithContext(ctx).
		Table("posts").
		Select("COALESCE(SUM(views), 0) as views, COALESCE(SUM(upvotes), 0) as upvotes").
		Where("author_id = ?", user.ID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats.TotalViews = row.Views
	stats.TotalUpvotes = row.Upvotes
	return stats, nil
}

// UpdateProfile applies a self-service edit to the caller's own profile.
// A username change re-runs format validation and the uniqueness check.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if !strings.EqualFold(username, user.Username) {
			existing, err := s.userRepo.GetByUsername(ctx, username)
			if err != nil && models.ErrorCode(err) != models.CodeNotFound {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("Username already taken")
			}
		}
		fields["username"] = username
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		fields["bio"] = *in.Bio
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Theme != nil {
		fields["theme"] = *in.Theme
	}

	if err := s.userRepo.UpdateProfileFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
