package models

// OwnerID is the distinguished user ID of the permanent super-admin. Owner
// status is derived from identity here and nowhere else; it is never stored
// and never reassignable.
const OwnerID uint = 1

// BadgeTag identifies a single badge shown next to a username.
type BadgeTag string

// Role badge slot. Exactly one of these appears per user.
const (
	BadgeOwner     BadgeTag = "owner"
	BadgeAdmin     BadgeTag = "admin"
	BadgeDeveloper BadgeTag = "developer"
	BadgeTester    BadgeTag = "tester"
	BadgeModerator BadgeTag = "moderator"
	BadgeVIP       BadgeTag = "vip"
	BadgeUser      BadgeTag = "user"
)

// Custom badge slot, independent of role.
const (
	BadgeVerified       BadgeTag = "verified"
	BadgeSupporter      BadgeTag = "supporter"
	BadgeContributor    BadgeTag = "contributor"
	BadgeLegend         BadgeTag = "legend"
	BadgeCodeMaster     BadgeTag = "code_master"
	BadgePopularCreator BadgeTag = "popular_creator"
)

// customBadgeTags is the set of recognized custom badge values. Anything else
// stored on a user renders as no custom badge at all.
var customBadgeTags = map[string]BadgeTag{
	"verified":        BadgeVerified,
	"supporter":       BadgeSupporter,
	"contributor":     BadgeContributor,
	"legend":          BadgeLegend,
	"code_master":     BadgeCodeMaster,
	"popular_creator": BadgePopularCreator,
}

// IsOwner is the single source of truth for owner-ness. All other packages
// must call this rather than comparing against OwnerID themselves.
func IsOwner(u *User) bool {
	return u != nil && u.ID == OwnerID
}

// ResolveBadges maps a user to their ordered badge presentation list. The
// first entry is always the role badge (owner wins over any stored role, the
// default role badge is "user", so the list is never empty). A recognized
// custom badge is appended as an independent second entry.
func ResolveBadges(u *User) []BadgeTag {
	if u == nil {
		return []BadgeTag{BadgeUser}
	}

	var role BadgeTag
	switch {
	case IsOwner(u):
		role = BadgeOwner
	case u.Role == RoleAdmin:
		role = BadgeAdmin
	case u.Role == RoleDeveloper:
		role = BadgeDeveloper
	case u.Role == RoleTester:
		role = BadgeTester
	case u.Role == RoleModerator:
		role = BadgeModerator
	case u.Role == RoleVIP:
		role = BadgeVIP
	default:
		role = BadgeUser
	}

	badges := []BadgeTag{role}
	if custom, ok := customBadgeTags[u.CustomBadge]; ok {
		badges = append(badges, custom)
	}
	return badges
}
