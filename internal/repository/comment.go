package repository

import (
	"context"
	"errors"

	"github.com/infmoney/omegahubsite/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Comments attach either to a post or to a user's profile wall; the service
// layer enforces that exactly one target is set.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	ListByProfile(ctx context.Context, profileUserID uint) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("comment", id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first, with comments from
// banned authors filtered out.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.post_id = ?", postID).
		Where("users.is_banned = ?", false).
		Preload("Author").
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByProfile(ctx context.Context, profileUserID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.profile_user_id = ?", profileUserID).
		Where("users.is_banned = ?", false).
		Preload("Author").
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("comment", id)
	}
	return nil
}

func (r *commentRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}
