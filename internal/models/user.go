// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the single primary capability tier of a user. It is stored as one
// enum column; assigning a new role is a single-column write, so a user can
// never hold two roles at once.
type Role string

const (
	RoleUser      Role = "user"
	RoleTester    Role = "tester"
	RoleModerator Role = "moderator"
	RoleDeveloper Role = "developer"
	RoleVIP       Role = "vip"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a raw role string to a Role. Unrecognized values (including
// the literal "user") degrade to RoleUser rather than erroring.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleTester, RoleModerator, RoleDeveloper, RoleVIP, RoleAdmin:
		return Role(s)
	default:
		return RoleUser
	}
}

// User represents a member of the script board. Users are never hard-deleted;
// banning is the soft state that removes their content from public surfaces.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	Role        Role      `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CustomBadge string    `json:"custom_badge,omitempty"`
	CustomTitle string    `json:"custom_title,omitempty"`
	IsBanned    bool      `gorm:"not null;default:false" json:"is_banned"`
	Reputation  int       `gorm:"not null;default:0" json:"reputation"`
	Followers   int       `gorm:"not null;default:0" json:"followers"`
	Bio         string    `json:"bio"`
	Avatar      string    `json:"avatar"`
	Status      string    `gorm:"default:online" json:"status"`
	Theme       string    `gorm:"default:default" json:"theme"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdminOrOwner reports whether the user carries admin capability, either
// through the admin role or by being the owner.
func (u *User) IsAdminOrOwner() bool {
	return IsOwner(u) || u.Role == RoleAdmin
}
