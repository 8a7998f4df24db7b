package service

import "real-estate-service/internal/domain"

// Caller describes the authenticated principal behind a request. A zero
// Caller means the request carried no valid credentials.
type Caller struct {
	ID            string
	Role          domain.Role
	Authenticated bool
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated && c.Role == domain.RoleAdmin
}

// Action names a guarded mutation.
type Action string

const (
	// ActionModerate covers approving and rejecting listings.
	ActionModerate Action = "moderate"
	// ActionEditOrDelete covers editing or removing a listing.
	ActionEditOrDelete Action = "edit_or_delete"
	// ActionDeleteUser covers removing a user account.
	ActionDeleteUser Action = "delete_user"
)

// Denial reasons, in order of precedence.
const (
	DenialUnauthenticated = "unauthenticated"
	DenialAdminsOnly      = "admins_only"
	DenialNotOwner        = "not_owner"
	DenialAdminProtected  = "admin_protected"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Allowed: false, Reason: r} }

// AuthorizeListing decides whether caller may perform action on a listing
// owned by ownerID. Checks run in strict order: authentication first, then
// role, then ownership.
func AuthorizeListing(caller Caller, action Action, ownerID string) Decision {
	if !caller.Authenticated {
		return deny(DenialUnauthenticated)
	}
	switch action {
	case ActionModerate:
		if !caller.IsAdmin() {
			return deny(DenialAdminsOnly)
		}
		return allow()
	case ActionEditOrDelete:
		if caller.IsAdmin() || caller.ID == ownerID {
			return allow()
		}
		return deny(DenialNotOwner)
	default:
		return deny(DenialAdminsOnly)
	}
}

// AuthorizeUserDeletion decides whether caller may delete the target user.
// Only admins may delete users, and admin accounts are never deletable,
// including by themselves.
func AuthorizeUserDeletion(caller Caller, target *domain.User) Decision {
	if !caller.Authenticated {
		return deny(DenialUnauthenticated)
	}
	if !caller.IsAdmin() {
		return deny(DenialAdminsOnly)
	}
	if target != nil && target.Role == domain.RoleAdmin {
		return deny(DenialAdminProtected)
	}
	return allow()
}
