package service

import (
	"context"
	"strings"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxCodeLen        = 100000
	maxTags           = 10
)

type PostService struct {
	postRepo      repository.PostRepository
	forumRepo     repository.ForumRepository
	requireActive func(ctx context.Context, userID uint) (*models.User, error)
	canModify     func(ctx context.Context, actorID uint, ownerID *uint) (bool, error)
}

type CreatePostInput struct {
	AuthorID    *uint
	CategoryID  *uint
	Title       string
	Description string
	Code        string
	Language    string
	Tags        []string
}

type UpdatePostInput struct {
	ActorID     uint
	PostID      uint
	Title       *string
	Description *string
	Code        *string
	Language    *string
	Tags        []string
}

func NewPostService(
	postRepo repository.PostRepository,
	forumRepo repository.ForumRepository,
	requireActive func(ctx context.Context, userID uint) (*models.User, error),
	canModify func(ctx context.Context, actorID uint, ownerID *uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		forumRepo:     forumRepo,
		requireActive: requireActive,
		canModify:     canModify,
	}
}

func normalizeTags(tags []string) models.StringList {
	var out models.StringList
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CreatePost validates and stores a new script. A nil AuthorID publishes
// anonymously; authored posts require an active (non-banned) account.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID != nil {
		if _, err := s.requireActive(ctx, *in.AuthorID); err != nil {
			return nil, err
		}
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 5000 characters)")
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, models.NewValidationError("Code is required")
	}
	if len(in.Code) > maxCodeLen {
		return nil, models.NewValidationError("Code too long (max 100000 characters)")
	}

	tags := normalizeTags(in.Tags)
	if len(tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}

	language := strings.ToLower(strings.TrimSpace(in.Language))
	if language == "" {
		language = "javascript"
	}

	if in.CategoryID != nil {
		if _, err := s.forumRepo.GetCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		AuthorID:    in.AuthorID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Language:    language,
		Tags:        tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePost applies a partial edit. Nil fields are left as they are; the
// tags slice replaces the whole list when non-nil.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModify(ctx, in.ActorID, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Not allowed to edit this post")
	}

	// Only the edited columns are written. Counters belong to the
	// Record* mutations and stay out of this statement entirely.
	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title must be 1-200 characters")
		}
		post.Title = title
		fields["title"] = title
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" || len(*in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError("Description must be 1-5000 characters")
		}
		post.Description = *in.Description
		fields["description"] = *in.Description
	}
	if in.Code != nil {
		if strings.TrimSpace(*in.Code) == "" || len(*in.Code) > maxCodeLen {
			return nil, models.NewValidationError("Code must be 1-100000 characters")
		}
		post.Code = *in.Code
		fields["code"] = *in.Code
	}
	if in.Language != nil {
		language := strings.ToLower(strings.TrimSpace(*in.Language))
		if language == "" {
			return nil, models.NewValidationError("Language cannot be empty")
		}
		post.Language = language
		fields["language"] = language
	}
	if in.Tags != nil {
		tags := normalizeTags(in.Tags)
		if len(tags) > maxTags {
			return nil, models.NewValidationError("Too many tags (max 10)")
		}
		post.Tags = tags
		fields["tags"] = tags
	}

	if err := s.postRepo.UpdateFields(ctx, in.PostID, fields); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	allowed, err := s.canModify(ctx, actorID, post.AuthorID)
	if err != nil {
		return err
	}
	if !allowed {
		return models.NewForbiddenError("Not allowed to delete this post")
	}
	return s.postRepo.Delete(ctx, postID)
}

// Vote records a vote for the acting user. Repeating the same direction
// changes nothing; switching direction moves the vote across counters.
func (s *PostService) Vote(ctx context.Context, actorID, postID uint, direction string) (*models.Post, error) {
	dir, err := models.ParseVoteDirection(direction)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireActive(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.postRepo.RecordVote(ctx, postID, actorID, dir); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Favorite bumps the favorite counter and returns the new total.
func (s *PostService) Favorite(ctx context.Context, actorID, postID uint) (int, error) {
	if _, err := s.requireActive(ctx, actorID); err != nil {
		return 0, err
	}
	return s.postRepo.RecordFavorite(ctx, postID)
}

// RecordView bumps the view counter. Anonymous viewers count too.
func (s *PostService) RecordView(ctx context.Context, postID uint) error {
	return s.postRepo.RecordView(ctx, postID)
}
