package session

import (
	"slices"

	"github.com/gridpulse/console/internal/gateway"
)

// Identity is the signed-in user's profile merged with their role and permission names.
type Identity struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func newIdentity(u gateway.User, perms gateway.PermissionSet) *Identity {
	roles := perms.Roles
	if roles == nil {
		roles = []string{}
	}
	permissions := perms.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return &Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		CreatedAt:   u.CreatedAt,
		Roles:       roles,
		Permissions: permissions,
	}
}

// DisplayName prefers the full name and falls back to the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.FullName != "" {
		return i.FullName
	}
	return i.Username
}

// HasRole reports verbatim membership of role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// HasAnyRole reports whether at least one of roles is held.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// HasPermission reports verbatim membership of permission.
func (i *Identity) HasPermission(permission string) bool {
	return i != nil && slices.Contains(i.Permissions, permission)
}

// State is what every request knows about its session.
type State struct {
	Identity *Identity
	// Loading is set while a restore is still in flight.
	Loading bool
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool {
	return s.Identity != nil
}
