// Package identity holds the canonical authenticated principal. It is rebuilt
// from the credential store on every login, impersonation switch and password
// change; nothing mutates an issued Identity in place.
package identity

import "strconv"

// Role is a named capability attached to an identity.
type Role string

// Role constants
const (
	RoleMember  Role = "Member"
	RoleTrainer Role = "Trainer"
	RoleAdmin   Role = "Admin"
)

// ValidRoles contains all valid role values, in the order they are granted.
var ValidRoles = []Role{RoleMember, RoleTrainer, RoleAdmin}

// Impersonation marks an identity that an admin assumed temporarily.
type Impersonation struct {
	OriginalAdminID string
}

// Identity is the authenticated principal attached to a request.
// INVARIANT: MemberID is the single owner id for all downstream data checks
// INVARIANT: Roles contains RoleMember for every authenticated identity
type Identity struct {
	MemberID           int64
	Name               string
	Email              string
	Roles              []Role
	TrainerID          *int64
	MustChangePassword bool
	Impersonation      *Impersonation
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsImpersonating returns true if an admin is acting as this identity.
// INVARIANT: Identity fields are not mutated
func (i Identity) IsImpersonating() bool {
	return i.Impersonation != nil
}

// MemberIDString returns the member id in its wire form.
func (i Identity) MemberIDString() string {
	return strconv.FormatInt(i.MemberID, 10)
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
