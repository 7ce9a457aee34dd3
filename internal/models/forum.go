package models

import "time"

// Forum is a top-level board grouping categories of script posts.
type Forum struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Description string     `json:"description"`
	IsPinned    bool       `gorm:"not null;default:false" json:"is_pinned"`
	Categories  []Category `gorm:"foreignKey:ForumID" json:"categories,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Category is a section within a forum that posts can be filed under.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ForumID     uint      `gorm:"not null;index" json:"forum_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
