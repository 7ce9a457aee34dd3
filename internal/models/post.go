package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an ordered list of strings as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
}

// Post is a shared script. Counters are mutated only through the named
// repository operations, never by direct field assignment, and posts are
// hard-deleted (comments referencing a deleted post become unreachable but
// are not purged eagerly).
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    *uint      `gorm:"index" json:"author_id,omitempty"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID  *uint      `gorm:"index" json:"category_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Code        string     `gorm:"type:text;not null" json:"code"`
	Language    string     `gorm:"not null;default:javascript" json:"language"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	Upvotes     int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int        `gorm:"not null;default:0" json:"downvotes"`
	Views       int        `gorm:"not null;default:0" json:"views"`
	Favorites   int        `gorm:"not null;default:0" json:"favorites"`
	IsPinned    bool       `gorm:"not null;default:false;index" json:"is_pinned"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VoteDirection is the direction of a recorded vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ParseVoteDirection validates a raw direction string.
func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(s) {
	case VoteUp, VoteDown:
		return VoteDirection(s), nil
	default:
		return "", NewValidationError("Vote direction must be 'up' or 'down'")
	}
}

// Vote records which direction a user voted on a post. The unique
// (post_id, user_id) index is what makes repeat voting a no-op instead of
// unbounded counter inflation.
type Vote struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PostID    uint          `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"post_id"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"user_id"`
	Direction VoteDirection `gorm:"type:varchar(8);not null" json:"direction"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
