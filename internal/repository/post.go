package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/infmoney/omegahubsite/internal/cache"
	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/observability"

	"gorm.io/gorm"
)

// Sort modes accepted by post listings. Anything unrecognized falls back
// to SortNewest.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortMostVoted = "most-voted"
	SortMostView  = "most-viewed"
)

// FeaturedCount is how many posts the featured strip carries.
const FeaturedCount = 6

// PostRepository defines the interface for post data operations. Counter
// fields (views, favorites, upvotes, downvotes) are mutated only through
// RecordView/RecordFavorite/RecordVote, which run the arithmetic inside the
// database so concurrent callers cannot lose updates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	ListVisible(ctx context.Context, sort string, limit, offset int) ([]models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, visibleOnly bool) ([]models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, sort string, limit, offset int) ([]models.Post, error)
	Featured(ctx context.Context) ([]models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error)
	RecordVote(ctx context.Context, postID, userID uint, direction models.VoteDirection) error
	RecordView(ctx context.Context, postID uint) error
	RecordFavorite(ctx context.Context, postID uint) (int, error)
	SetPinned(ctx context.Context, postID uint, pinned bool) error
	GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.FeaturedPostsKey)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateFields applies a partial update naming only the given columns.
// Counter columns are never written here, so a vote or view landing
// mid-edit survives the write.
func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Delete hard-deletes the post and its vote records. Comments are left in
// place; they become unreachable once the post is gone.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("post", id)
		}
		return tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// visible scopes a query to posts whose author is not banned. Anonymous
// posts have no author to ban, so they always pass the gate.
func (r *postRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Where("posts.author_id IS NULL OR users.is_banned = ?", false)
}

// applySort maps a sort mode onto an ORDER BY. Only the default mode gives
// pinned posts precedence; explicit sorts order the whole set uniformly.
func applySort(q *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortOldest:
		return q.Order("posts.created_at ASC")
	case SortMostVoted:
		return q.Order("(posts.upvotes - posts.downvotes) DESC").Order("posts.created_at DESC")
	case SortMostView:
		return q.Order("posts.views DESC").Order("posts.created_at DESC")
	default:
		return q.Order("posts.is_pinned DESC").Order("posts.created_at DESC")
	}
}

func (r *postRepository) ListVisible(ctx context.Context, sort string, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("list_visible", "posts")()
	var posts []models.Post
	q := applySort(r.visible(ctx), sort).Preload("Author").Limit(limit).Offset(offset)
	return posts, q.Find(&posts).Error
}

// ListAll skips the visibility gate. Moderation surfaces need to see
// hidden content to act on it.
func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, visibleOnly bool) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if visibleOnly {
		q = r.visible(ctx)
	}
	err := q.Where("posts.author_id = ?", authorID).
		Preload("Author").
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, sort string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	q := r.visible(ctx).Where("posts.category_id = ?", categoryID)
	q = applySort(q, sort).Preload("Author").Limit(limit).Offset(offset)
	return posts, q.Find(&posts).Error
}

// Featured returns the front-page strip: pinned first, then newest, capped
// at FeaturedCount, banned authors filtered.
func (r *postRepository) Featured(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := cache.Aside(ctx, cache.FeaturedPostsKey, &posts, cache.FeaturedTTL, func() error {
		return applySort(r.visible(ctx), SortNewest).
			Preload("Author").
			Limit(FeaturedCount).
			Find(&posts).Error
	})
	return posts, err
}

// Search matches the query against title, description, language and the
// serialized tag list, ranked by engagement.
func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("search", "posts")()
	pattern := "%" + strings.ToLower(query) + "%"
	var posts []models.Post
	err := r.visible(ctx).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.description) LIKE ? OR LOWER(posts.language) LIKE ? OR LOWER(posts.tags) LIKE ?",
			pattern, pattern, pattern, pattern).
		Order("(posts.upvotes + posts.views * 0.1 + posts.favorites * 2) DESC").
		Order("posts.created_at DESC").
		Preload("Author").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func voteColumn(d models.VoteDirection) string {
	if d == models.VoteDown {
		return "downvotes"
	}
	return "upvotes"
}

// RecordVote applies one user's vote to a post. Repeating the same
// direction is a no-op; switching direction moves the vote, decrementing
// the old counter and incrementing the new one in the same transaction.
func (r *postRepository) RecordVote(ctx context.Context, postID, userID uint, direction models.VoteDirection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("post", postID)
		}

		var vote models.Vote
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{PostID: postID, UserID: userID, Direction: direction}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Lost a race with the same user's concurrent vote.
					return nil
				}
				return err
			}
			col := voteColumn(direction)
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn(col, gorm.Expr(col+" + 1")).Error

		case err != nil:
			return err

		case vote.Direction == direction:
			return nil

		default:
			if err := tx.Model(&models.Vote{}).
				Where("id = ?", vote.ID).
				Update("direction", direction).Error; err != nil {
				return err
			}
			oldCol, newCol := voteColumn(vote.Direction), voteColumn(direction)
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumns(map[string]interface{}{
					oldCol: gorm.Expr(oldCol + " - 1"),
					newCol: gorm.Expr(newCol + " + 1"),
				}).Error
		}
	})
	if err != nil {
		return err
	}
	observability.VotesRecorded.WithLabelValues(string(direction)).Inc()
	cache.InvalidatePost(ctx, postID)
	return nil
}

// RecordView bumps the view counter with in-database arithmetic, so
// concurrent views cannot clobber each other.
func (r *postRepository) RecordView(ctx context.Context, postID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", postID)
	}
	observability.ViewsRecorded.Inc()
	cache.InvalidatePost(ctx, postID)
	return nil
}

// RecordFavorite increments the favorite counter and returns the new total
// from the same statement.
func (r *postRepository) RecordFavorite(ctx context.Context, postID uint) (int, error) {
	var total int
	res := r.db.WithContext(ctx).
		Raw("UPDATE posts SET favorites = favorites + 1 WHERE id = ? RETURNING favorites", postID).
		Scan(&total)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("post", postID)
	}
	cache.InvalidatePost(ctx, postID)
	return total, nil
}

// SetPinned is idempotent: pinning a pinned post succeeds without change.
func (r *postRepository) SetPinned(ctx context.Context, postID uint, pinned bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Update("is_pinned", pinned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", postID)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}
