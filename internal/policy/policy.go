// Package policy is the single access-control decision point for the
// application. Every handler consults it before mutating state; no route
// handler carries its own role checks.
//
// Evaluation is pure: decisions are computed from the principal and resource
// snapshots already loaded by the caller. The owner / co-admin / guest tier is
// recomputed on every call because membership can change between requests.
package policy

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Role is the flat role stored on a user record.
type Role string

const (
	RoleGuest            Role = "guest"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
	RoleApplicationAdmin Role = "application_admin"
)

// ParseRole maps a stored role string onto the enum. Unknown values resolve
// to guest rather than failing; a missing role must never grant rights.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	case RoleApplicationAdmin:
		return RoleApplicationAdmin
	default:
		return RoleGuest
	}
}

// Valid reports whether the role is one of the four known values.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleAdmin, RoleSuperAdmin, RoleApplicationAdmin:
		return true
	default:
		return false
	}
}

// Action is an operation a principal attempts on a resource.
type Action string

const (
	ActionRead        Action = "read"
	ActionCreateChild Action = "create_child"
	ActionUpdateOwn   Action = "update_own"
	ActionUpdateAny   Action = "update_any"
	ActionDelete      Action = "delete"
	ActionApprove     Action = "approve"
)

// Principal is the authenticated actor making a request.
type Principal struct {
	ID    snowflake.ID
	Email string
	Name  string
	Role  Role
}

// Wedding is the resource snapshot the evaluator needs: the owner and the
// current co-admin set, loaded fresh by the caller for each request.
type Wedding struct {
	ID       snowflake.ID
	OwnerID  snowflake.ID
	AdminIDs []snowflake.ID
}

// Media identifies a media item by its uploader for self-scoped decisions.
type Media struct {
	WeddingID  snowflake.ID
	UploadedBy snowflake.ID
}

// Answer identifies an answer by its author.
type Answer struct {
	AnsweredBy snowflake.ID
}

// RSVP identifies a guest RSVP row by linked user and invited email.
type RSVP struct {
	WeddingID   snowflake.ID
	GuestUserID snowflake.ID
	GuestEmail  string
}

// Tier is a principal's effective standing on one wedding.
type Tier int

const (
	TierGuest Tier = iota
	TierCoAdmin
	TierOwner
)

// TierOf computes the effective tier of a principal on a wedding.
// Ownership always wins; co-admin requires both the admin role and presence
// in the wedding's admin set. Application admins moderate every wedding with
// co-admin standing but never own one they didn't create.
func TierOf(p Principal, w Wedding) Tier {
	if p.ID != 0 && p.ID == w.OwnerID {
		return TierOwner
	}
	if p.Role == RoleApplicationAdmin {
		return TierCoAdmin
	}
	if p.Role == RoleAdmin {
		for _, id := range w.AdminIDs {
			if id == p.ID {
				return TierCoAdmin
			}
		}
	}
	return TierGuest
}

// CanWedding decides an action against the wedding itself.
//
//	read:    everyone (guests see public fields only, enforced by the handler)
//	update:  owner and co-admins
//	delete:  owner only
//	create_child (media/questions/events/guests): see the dedicated helpers
func CanWedding(p Principal, action Action, w Wedding) bool {
	tier := TierOf(p, w)
	switch action {
	case ActionRead:
		return true
	case ActionUpdateAny, ActionCreateChild:
		return tier >= TierCoAdmin
	case ActionDelete:
		return tier == TierOwner
	default:
		return false
	}
}

// CanMedia decides an action against a media item within its wedding.
// Uploading itself is open to every member; the initial moderation status is
// a separate concern (see InitialMediaStatusApproved). Every principal
// retains delete rights over media it personally uploaded.
func CanMedia(p Principal, action Action, w Wedding, m Media) bool {
	tier := TierOf(p, w)
	switch action {
	case ActionRead:
		return true
	case ActionCreateChild:
		return true
	case ActionApprove, ActionUpdateAny:
		return tier >= TierCoAdmin
	case ActionDelete:
		if tier >= TierCoAdmin {
			return true
		}
		return m.UploadedBy != 0 && m.UploadedBy == p.ID
	default:
		return false
	}
}

// InitialMediaStatusApproved reports whether an upload by the principal
// skips moderation. Owner and co-admin uploads are trusted; guest uploads
// wait for approval.
func InitialMediaStatusApproved(p Principal, w Wedding) bool {
	return TierOf(p, w) >= TierCoAdmin
}

// CanQuestion decides question management. Questions are authored by the
// owner or co-admins only; reading is open to members.
func CanQuestion(p Principal, action Action, w Wedding) bool {
	switch action {
	case ActionRead:
		return true
	case ActionCreateChild, ActionUpdateAny, ActionDelete:
		return TierOf(p, w) >= TierCoAdmin
	default:
		return false
	}
}

// CanAnswer decides answer mutation: authors keep full rights over their own
// answers regardless of role, and nobody edits someone else's answer.
func CanAnswer(p Principal, action Action, a Answer) bool {
	switch action {
	case ActionRead:
		return true
	case ActionUpdateOwn, ActionDelete:
		return a.AnsweredBy != 0 && a.AnsweredBy == p.ID
	default:
		return false
	}
}

// CanRSVP decides RSVP mutation: guests update their own row (matched by
// linked user id or invited email), owner and co-admins update any row in
// their wedding.
func CanRSVP(p Principal, action Action, w Wedding, r RSVP) bool {
	tier := TierOf(p, w)
	switch action {
	case ActionRead:
		return tier >= TierCoAdmin || ownsRSVP(p, r)
	case ActionCreateChild:
		return tier >= TierCoAdmin
	case ActionUpdateOwn:
		return ownsRSVP(p, r)
	case ActionUpdateAny, ActionDelete:
		return tier >= TierCoAdmin
	default:
		return false
	}
}

func ownsRSVP(p Principal, r RSVP) bool {
	if r.GuestUserID != 0 && r.GuestUserID == p.ID {
		return true
	}
	return r.GuestEmail != "" && strings.EqualFold(r.GuestEmail, p.Email)
}

// CanInvite decides whether the principal may issue an invitation granting
// the given role on the wedding. Owners invite co-admins and guests;
// co-admins invite guests only.
func CanInvite(p Principal, w Wedding, granted Role) bool {
	tier := TierOf(p, w)
	switch granted {
	case RoleAdmin:
		return tier == TierOwner
	case RoleGuest:
		return tier >= TierCoAdmin
	default:
		return false
	}
}
