package service

import (
	"context"

	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"
)

// EnrichedPost is a post decorated for display: author badge ribbon and
// net vote score, computed at read time so they can never go stale.
type EnrichedPost struct {
	models.Post
	Score        int               `json:"score"`
	AuthorBadges []models.BadgeTag `json:"author_badges,omitempty"`
}

// ListingService assembles post listings: visibility filtering, sort
// modes, pin precedence and badge enrichment all happen here so every
// surface renders posts the same way.
type ListingService struct {
	postRepo repository.PostRepository
	canView  func(ctx context.Context, viewerID uint, post *models.Post) (bool, error)
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

func NewListingService(
	postRepo repository.PostRepository,
	canView func(ctx context.Context, viewerID uint, post *models.Post) (bool, error),
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ListingService {
	return &ListingService{postRepo: postRepo, canView: canView, isAdmin: isAdmin}
}

func enrich(post models.Post) EnrichedPost {
	e := EnrichedPost{
		Post:  post,
		Score: post.Upvotes - post.Downvotes,
	}
	if post.Author != nil {
		e.AuthorBadges = models.ResolveBadges(post.Author)
	}
	return e
}

func enrichAll(posts []models.Post) []EnrichedPost {
	out := make([]EnrichedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, enrich(p))
	}
	return out
}

// List returns the public board. Unknown sort values fall back to the
// default pinned-then-newest ordering.
func (s *ListingService) List(ctx context.Context, sort string, limit, offset int) ([]EnrichedPost, error) {
	posts, err := s.postRepo.ListVisible(ctx, sort, limit, offset)
	if err != nil {
		return nil, err
	}
	return enrichAll(posts), nil
}

// Featured returns the front-page strip.
func (s *ListingService) Featured(ctx context.Context) ([]EnrichedPost, error) {
	posts, err := s.postRepo.Featured(ctx)
	if err != nil {
		return nil, err
	}
	return enrichAll(posts), nil
}

func (s *ListingService) Search(ctx context.Context, query string, limit, offset int) ([]EnrichedPost, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	posts, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return enrichAll(posts), nil
}

func (s *ListingService) ByCategory(ctx context.Context, categoryID uint, sort string, limit, offset int) ([]EnrichedPost, error) {
	posts, err := s.postRepo.ListByCategory(ctx, categoryID, sort, limit, offset)
	if err != nil {
		return nil, err
	}
	return enrichAll(posts), nil
}

// ByAuthor lists one user's posts. The author sees their own posts even
// while banned, as do moderators; everyone else gets the filtered view.
func (s *ListingService) ByAuthor(ctx context.Context, viewerID, authorID uint) ([]EnrichedPost, error) {
	visibleOnly := true
	if viewerID == authorID && viewerID != 0 {
		visibleOnly = false
	} else if viewerID != 0 {
		isAdmin, err := s.isAdmin(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		visibleOnly = !isAdmin
	}
	posts, err := s.postRepo.ListByAuthor(ctx, authorID, visibleOnly)
	if err != nil {
		return nil, err
	}
	return enrichAll(posts), nil
}

// GetPost fetches one post for display, counting the view. Posts by banned
// authors stay reachable only for the author and moderators.
func (s *ListingService) GetPost(ctx context.Context, viewerID, postID uint) (*EnrichedPost, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("post", postID)
	}
	if err := s.postRepo.RecordView(ctx, postID); err != nil {
		return nil, err
	}
	post.Views++
	e := enrich(*post)
	return &e, nil
}
