package repository

import (
	"context"
	"errors"

	"github.com/infmoney/omegahubsite/internal/cache"
	"github.com/infmoney/omegahubsite/internal/models"

	"gorm.io/gorm"
)

// ForumRepository defines the interface for forum and category data operations.
type ForumRepository interface {
	CreateForum(ctx context.Context, forum *models.Forum) error
	GetForum(ctx context.Context, id uint) (*models.Forum, error)
	ListForums(ctx context.Context) ([]models.Forum, error)
	SetForumPinned(ctx context.Context, id uint, pinned bool) error
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
}

type forumRepository struct {
	db *gorm.DB
}

// NewForumRepository creates a new forum repository
func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) CreateForum(ctx context.Context, forum *models.Forum) error {
	if err := r.db.WithContext(ctx).Create(forum).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Forum name already taken")
		}
		return err
	}
	cache.Invalidate(ctx, cache.ForumsKey)
	return nil
}

func (r *forumRepository) GetForum(ctx context.Context, id uint) (*models.Forum, error) {
	var forum models.Forum
	err := r.db.WithContext(ctx).Preload("Categories").First(&forum, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("forum", id)
	}
	if err != nil {
		return nil, err
	}
	return &forum, nil
}

// ListForums returns all boards, pinned first, cached briefly since the
// board list changes rarely.
func (r *forumRepository) ListForums(ctx context.Context) ([]models.Forum, error) {
	var forums []models.Forum
	err := cache.Aside(ctx, cache.ForumsKey, &forums, cache.ForumsTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Categories").
			Order("is_pinned DESC").
			Order("created_at ASC").
			Find(&forums).Error
	})
	return forums, err
}

func (r *forumRepository) SetForumPinned(ctx context.Context, id uint, pinned bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Forum{}).
		Where("id = ?", id).
		Update("is_pinned", pinned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("forum", id)
	}
	cache.Invalidate(ctx, cache.ForumsKey)
	return nil
}

func (r *forumRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Forum{}).
		Where("id = ?", category.ForumID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return models.NewNotFoundError("forum", category.ForumID)
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.ForumsKey)
	return nil
}

func (r *forumRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("category", id)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
