package models

import "time"

// Comment targets exactly one of a post or a user profile. The XOR is
// enforced at creation time in the comment service; the columns stay nullable
// so orphaned post comments survive a post hard-delete.
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PostID        *uint     `gorm:"index" json:"post_id,omitempty"`
	ProfileUserID *uint     `gorm:"index" json:"profile_user_id,omitempty"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
