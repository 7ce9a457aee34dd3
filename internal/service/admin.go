package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/observability"
	"github.com/infmoney/omegahubsite/internal/repository"

	"gorm.io/gorm"
)

// AdminService is the sole mutator of roles, custom badges, custom titles,
// bans and pins. Every operation authenticates the actor as admin-or-owner
// and refuses to touch the owner account, so the owner can never be demoted
// or banned by anyone, itself included.
type AdminService struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	forumRepo repository.ForumRepository
	db        *gorm.DB
}

// NewAdminService returns a new AdminService. The raw DB handle is used
// only for batch aggregate queries the repositories have no business
// exposing.
func NewAdminService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	forumRepo repository.ForumRepository,
	db *gorm.DB,
) *AdminService {
	return &AdminService{userRepo: userRepo, postRepo: postRepo, forumRepo: forumRepo, db: db}
}

// AdminUserRow is one user in the admin listing, with content aggregates
// and the same resolved badge ribbon the public surfaces render.
type AdminUserRow struct {
	User         models.User       `json:"user"`
	Badges       []models.BadgeTag `json:"badges"`
	PostCount    int64             `json:"post_count"`
	CommentCount int64             `json:"comment_count"`
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	BannedUsers   int64 `json:"banned_users"`
}

// BulkOutcome reports the result for one target of a bulk role change.
// Token is the raw id as submitted; UserID is zero when it did not parse.
type BulkOutcome struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SetProfileInput carries the admin-editable profile fields. Nil pointers
// mean "leave unchanged"; an explicit empty string clears the field.
type SetProfileInput struct {
	Reputation  *int
	Followers   *int
	CustomTitle *string
	CustomBadge *string
	Bio         *string
	Avatar      *string
}

func (s *AdminService) requireAdmin(ctx context.Context, actorID uint) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdminOrOwner() {
		observability.ModerationDenials.WithLabelValues("admin").Inc()
		return nil, models.NewForbiddenError("Admin access required")
	}
	return actor, nil
}

func parseAssignableRole(raw string) (models.Role, error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case models.RoleUser, models.RoleTester, models.RoleModerator,
		models.RoleDeveloper, models.RoleVIP, models.RoleAdmin:
		return role, nil
	default:
		return "", models.NewValidationError("Invalid role: " + raw)
	}
}

// SetRole assigns a user's role. One column, one write; the previous role
// is gone the moment the new one lands.
func (s *AdminService) SetRole(ctx context.Context, actorID, targetID uint, rawRole string) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	role, err := parseAssignableRole(rawRole)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if models.IsOwner(target) {
		return nil, models.NewForbiddenError("The owner's role cannot be changed")
	}
	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	observability.RoleAssignments.WithLabelValues(string(role)).Inc()
	return s.userRepo.GetByID(ctx, targetID)
}

// AssignByUsername sets a user's role and custom badge in one action,
// addressed by name and matched case-insensitively. A nil badge leaves the
// current one alone; an empty string clears it.
func (s *AdminService) AssignByUsername(ctx context.Context, actorID uint, username, rawRole string, badge *string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user, err := s.SetRole(ctx, actorID, target.ID, rawRole)
	if err != nil {
		return nil, err
	}
	if badge == nil {
		return user, nil
	}
	return s.SetProfile(ctx, actorID, target.ID, SetProfileInput{CustomBadge: badge})
}

// BulkAssign applies one role to many users addressed by raw id tokens.
// Bad tokens, unknown ids and the owner are per-target outcomes; they
// never fail the rest of the batch.
func (s *AdminService) BulkAssign(ctx context.Context, actorID uint, tokens []string, rawRole string) ([]BulkOutcome, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	role, err := parseAssignableRole(rawRole)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, models.NewValidationError("No user IDs given")
	}

	outcomes := make([]BulkOutcome, 0, len(tokens))
	for _, token := range tokens {
		parsed, parseErr := strconv.ParseUint(token, 10, 32)
		if parseErr != nil || parsed == 0 {
			outcomes = append(outcomes, BulkOutcome{Token: token, Status: "failed", Error: "not a valid user id"})
			continue
		}
		id := uint(parsed)

		target, err := s.userRepo.GetByID(ctx, id)
		switch {
		case err != nil:
			outcomes = append(outcomes, BulkOutcome{Token: token, UserID: id, Status: "failed", Error: err.Error()})
			continue
		case models.IsOwner(target):
			outcomes = append(outcomes, BulkOutcome{Token: token, UserID: id, Status: "skipped", Error: "owner role is fixed"})
			continue
		}
		if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
			outcomes = append(outcomes, BulkOutcome{Token: token, UserID: id, Status: "failed", Error: err.Error()})
			continue
		}
		observability.RoleAssignments.WithLabelValues(string(role)).Inc()
		outcomes = append(outcomes, BulkOutcome{Token: token, UserID: id, Status: "updated"})
	}
	return outcomes, nil
}

// SetProfile applies the admin-only profile fields. Absent fields stay as
// they were. CustomBadge is stored verbatim; unrecognized values simply
// never surface through badge resolution.
func (s *AdminService) SetProfile(ctx context.Context, actorID, targetID uint, in SetProfileInput) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Reputation != nil {
		fields["reputation"] = *in.Reputation
	}
	if in.Followers != nil {
		fields["followers"] = *in.Followers
	}
	if in.CustomTitle != nil {
		fields["custom_title"] = *in.CustomTitle
	}
	if in.CustomBadge != nil {
		fields["custom_badge"] = *in.CustomBadge
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if err := s.userRepo.UpdateProfileFields(ctx, targetID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// SetBan flips a user's ban. Idempotent; the owner cannot be banned.
// Content visibility follows automatically on the next read.
func (s *AdminService) SetBan(ctx context.Context, actorID, targetID uint, banned bool) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if models.IsOwner(target) {
		return nil, models.NewForbiddenError("The owner cannot be banned")
	}
	if err := s.userRepo.SetBan(ctx, targetID, banned); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// TogglePin sets a post's pin flag to the requested value. Requesting the
// current state again is a no-op success, so repeated calls converge.
func (s *AdminService) TogglePin(ctx context.Context, actorID, postID uint, pinned bool) (*models.Post, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.SetPinned(ctx, postID, pinned); err != nil {
		return nil, err
	}
	post.IsPinned = pinned
	return post, nil
}

// ToggleForumPin sets a forum board's pin flag. Idempotent like TogglePin.
func (s *AdminService) ToggleForumPin(ctx context.Context, actorID, forumID uint, pinned bool) (*models.Forum, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	forum, err := s.forumRepo.GetForum(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if err := s.forumRepo.SetForumPinned(ctx, forumID, pinned); err != nil {
		return nil, err
	}
	forum.IsPinned = pinned
	return forum, nil
}

// ListUsers returns the admin user table: every user regardless of ban
// state, with badge ribbons and per-user content counts batched in two
// aggregate queries.
func (s *AdminService) ListUsers(ctx context.Context, actorID uint, limit, offset int) ([]AdminUserRow, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	type countRow struct {
		AuthorID uint  `json:"author_id"`
		N        int64 `json:"n"`
	}
	postCounts := map[uint]int64{}
	commentCounts := map[uint]int64{}
	if len(users) > 0 {
		ids := make([]uint, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		var rows []countRow
		if err := s.db.WithContext(ctx).
			Table("posts").
			Select("author_id, COUNT(*) as n").
			Where("author_id IN ?", ids).
			Group("author_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			postCounts[r.AuthorID] = r.N
		}
		rows = nil
		if err := s.db.WithContext(ctx).
			Table("comments").
			Select("author_id, COUNT(*) as n").
			Where("author_id IN ?", ids).
			Group("author_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			commentCounts[r.AuthorID] = r.N
		}
	}

	resp := make([]AdminUserRow, 0, len(users))
	for i := range users {
		u := users[i]
		resp = append(resp, AdminUserRow{
			User:         u,
			Badges:       models.ResolveBadges(&u),
			PostCount:    postCounts[u.ID],
			CommentCount: commentCounts[u.ID],
		})
	}
	return resp, nil
}

// ListPosts returns every post including those hidden from public view.
func (s *AdminService) ListPosts(ctx context.Context, actorID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.postRepo.ListAll(ctx, limit, offset)
}

// Dashboard returns the admin landing page counters.
func (s *AdminService) Dashboard(ctx context.Context, actorID uint) (*DashboardStats, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	stats := &DashboardStats{}
	var err error
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.BannedUsers, err = s.userRepo.CountBanned(ctx); err != nil {
		return nil, err
	}
	if stats.TotalPosts, err = s.postRepo.Count(ctx); err != nil {
		return nil, err
	}
	if err = s.db.WithContext(ctx).Table("comments").Count(&stats.TotalComments).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
