package admin

import (
	"slices"
	"strings"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
)

// Status values reported by the backend.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// RoleAll disables the role filter.
const RoleAll = "All"

// FormRoles are the roles an admin can be created or edited with.
var FormRoles = []string{guard.RoleAdmin, guard.RoleSubAdmin, guard.RoleAnalyst}

// FilterRoles are offered by the list filter.
var FilterRoles = []string{RoleAll, guard.RoleSuperAdmin, guard.RoleAdmin, guard.RoleSubAdmin, guard.RoleAnalyst}

// Admin is an operator account as displayed by the console.
type Admin struct {
	ID        int64
	Name      string
	Username  string
	Email     string
	Status    string
	Roles     []string
	LastLogin string
	Avatar    string
}

// FromRecord maps a backend record. Name falls back to the username.
func FromRecord(rec gateway.AdminRecord) Admin {
	name := rec.FullName
	if name == "" {
		name = rec.Username
	}
	return Admin{
		ID:        rec.ID,
		Name:      name,
		Username:  rec.Username,
		Email:     rec.Email,
		Status:    rec.Status,
		Roles:     rec.Roles,
		LastLogin: rec.LastLogin,
		Avatar:    rec.Avatar,
	}
}

// Active reports whether the account is enabled.
func (a Admin) Active() bool {
	return strings.EqualFold(a.Status, StatusActive)
}

// PrimaryRole is the first role held, or empty.
func (a Admin) PrimaryRole() string {
	if len(a.Roles) == 0 {
		return ""
	}
	return a.Roles[0]
}

// HasRole reports verbatim membership of role.
func (a Admin) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// Filter narrows the admin list on the client side.
type Filter struct {
	Query string
	Role  string
}

// Apply keeps admins whose name or email contains Query case-insensitively
// and who hold Role. Records without a name or email never match.
func (f Filter) Apply(admins []Admin) []Admin {
	term := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Admin, 0, len(admins))
	for _, a := range admins {
		if a.Name == "" || a.Email == "" {
			continue
		}
		matchesSearch := strings.Contains(strings.ToLower(a.Name), term) ||
			strings.Contains(strings.ToLower(a.Email), term)
		matchesRole := f.Role == "" || f.Role == RoleAll || a.HasRole(f.Role)
		if matchesSearch && matchesRole {
			out = append(out, a)
		}
	}
	return out
}
