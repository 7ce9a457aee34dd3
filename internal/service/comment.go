package service

import (
	"context"
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"
)

const maxCommentLen = 2000

// EnrichedComment is a comment with its author's badge ribbon attached.
type EnrichedComment struct {
	models.Comment
	AuthorBadges []models.BadgeTag `json:"author_badges,omitempty"`
}

// CommentService handles comments on posts and on profile walls. A comment
// targets exactly one of the two.
type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	requireActive func(ctx context.Context, userID uint) (*models.User, error)
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	requireActive func(ctx context.Context, userID uint) (*models.User, error),
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		requireActive: requireActive,
		isAdmin:       isAdmin,
	}
}

func enrichComment(c models.Comment) EnrichedComment {
	e := EnrichedComment{Comment: c}
	if c.Author != nil {
		e.AuthorBadges = models.ResolveBadges(c.Author)
	}
	return e
}

func enrichComments(comments []models.Comment) []EnrichedComment {
	out := make([]EnrichedComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, enrichComment(c))
	}
	return out
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 2000 characters)")
	}
	return content, nil
}

// CreatePostComment attaches a comment to a post.
func (s *CommentService) CreatePostComment(ctx context.Context, authorID, postID uint, content string) (*EnrichedComment, error) {
	author, err := s.requireActive(ctx, authorID)
	if err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PostID:   &postID,
		AuthorID: authorID,
		Content:  content,
		Author:   author,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	e := enrichComment(*comment)
	return &e, nil
}

// CreateProfileComment leaves a comment on a user's profile wall.
func (s *CommentService) CreateProfileComment(ctx context.Context, authorID, profileUserID uint, content string) (*EnrichedComment, error) {
	author, err := s.requireActive(ctx, authorID)
	if err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, profileUserID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		ProfileUserID: &profileUserID,
		AuthorID:      authorID,
		Content:       content,
		Author:        author,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	e := enrichComment(*comment)
	return &e, nil
}

// ListForPost returns a post's visible comments oldest first.
func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]EnrichedComment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return enrichComments(comments), nil
}

// ListForProfile returns a profile wall's visible comments newest first.
func (s *CommentService) ListForProfile(ctx context.Context, profileUserID uint) ([]EnrichedComment, error) {
	if _, err := s.userRepo.GetByID(ctx, profileUserID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByProfile(ctx, profileUserID)
	if err != nil {
		return nil, err
	}
	return enrichComments(comments), nil
}

// DeleteComment removes a comment. The author, the owner of the profile
// wall it sits on, and admins may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	allowed := comment.AuthorID == actorID
	if !allowed && comment.ProfileUserID != nil && *comment.ProfileUserID == actorID {
		allowed = true
	}
	if !allowed {
		isAdmin, err := s.isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		allowed = isAdmin
	}
	if !allowed {
		return models.NewForbiddenError("Not allowed to delete this comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
