package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AuthAPI binds the authentication and current-user endpoints.
type AuthAPI struct{ c *Client }

// DashboardAPI binds the dashboard endpoints.
type DashboardAPI struct{ c *Client }

// UsersAPI binds the /users endpoints.
type UsersAPI struct{ c *Client }

// AdminAPI binds the /admin endpoints.
type AdminAPI struct{ c *Client }

// RolesAPI binds the /roles endpoints.
type RolesAPI struct{ c *Client }

// PermissionsAPI binds the /permissions endpoint.
type PermissionsAPI struct{ c *Client }

// AssignmentsAPI binds the user-role-permission endpoint.
type AssignmentsAPI struct{ c *Client }

func (c *Client) Auth() AuthAPI               { return AuthAPI{c} }
func (c *Client) Dashboard() DashboardAPI     { return DashboardAPI{c} }
func (c *Client) Users() UsersAPI             { return UsersAPI{c} }
func (c *Client) Admin() AdminAPI             { return AdminAPI{c} }
func (c *Client) Roles() RolesAPI             { return RolesAPI{c} }
func (c *Client) Permissions() PermissionsAPI { return PermissionsAPI{c} }
func (c *Client) Assignments() AssignmentsAPI { return AssignmentsAPI{c} }

// Register creates a self-service account.
func (a AuthAPI) Register(ctx context.Context, in Registration) (User, error) {
	var out User
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/auth/register", JSON: in}, &out)
	return out, err
}

// Login exchanges credentials for a bearer token. The endpoint expects a form body.
func (a AuthAPI) Login(ctx context.Context, username, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out Token
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/auth/login", Form: form}, &out)
	return out, err
}

// CurrentUser fetches the profile of the token holder.
func (a AuthAPI) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := a.c.Do(ctx, Request{Endpoint: "/users/me", Auth: true}, &out)
	return out, err
}

// UpdateProfile replaces editable profile fields of the token holder.
func (a AuthAPI) UpdateProfile(ctx context.Context, in ProfileUpdate) (User, error) {
	var out User
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Endpoint: "/users/me", JSON: in, Auth: true}, &out)
	return out, err
}

// UpdatePassword sets a new password for the token holder.
func (a AuthAPI) UpdatePassword(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	return a.c.Do(ctx, Request{Method: http.MethodPut, Endpoint: "/users/me/password", JSON: body, Auth: true}, nil)
}

// Permissions fetches the role and permission names of the token holder.
func (a AuthAPI) Permissions(ctx context.Context) (PermissionSet, error) {
	var out PermissionSet
	err := a.c.Do(ctx, Request{Endpoint: "/me/permissions", Auth: true}, &out)
	return out, err
}

// Stats fetches the headline counters.
func (d DashboardAPI) Stats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	err := d.c.Do(ctx, Request{Endpoint: "/dashboard/stats"}, &out)
	return out, err
}

// Charts fetches the chart series.
func (d DashboardAPI) Charts(ctx context.Context) (DashboardCharts, error) {
	var out DashboardCharts
	err := d.c.Do(ctx, Request{Endpoint: "/dashboard/charts"}, &out)
	return out, err
}

// List returns every account.
func (u UsersAPI) List(ctx context.Context) ([]User, error) {
	var out []User
	err := u.c.Do(ctx, Request{Endpoint: "/users"}, &out)
	return out, err
}

// Get returns one account.
func (u UsersAPI) Get(ctx context.Context, id int64) (User, error) {
	var out User
	err := u.c.Do(ctx, Request{Endpoint: "/users/" + strconv.FormatInt(id, 10)}, &out)
	return out, err
}

// Create adds an account.
func (u UsersAPI) Create(ctx context.Context, in UserInput) (User, error) {
	var out User
	err := u.c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/users", JSON: in}, &out)
	return out, err
}

// Update replaces an account.
func (u UsersAPI) Update(ctx context.Context, id int64, in UserInput) (User, error) {
	var out User
	err := u.c.Do(ctx, Request{Method: http.MethodPut, Endpoint: "/users/" + strconv.FormatInt(id, 10), JSON: in}, &out)
	return out, err
}

// Delete removes an account.
func (u UsersAPI) Delete(ctx context.Context, id int64) error {
	return u.c.Do(ctx, Request{Method: http.MethodDelete, Endpoint: "/users/" + strconv.FormatInt(id, 10)}, nil)
}

// ByNumber looks up the analytics record of a customer number.
func (u UsersAPI) ByNumber(ctx context.Context, number string) (Consumer, error) {
	var out Consumer
	err := u.c.Do(ctx, Request{Endpoint: "/users/number/" + url.PathEscape(number)}, &out)
	return out, err
}

// List returns admins, optionally narrowed by role and search term on the backend.
func (a AdminAPI) List(ctx context.Context, role, search string) ([]AdminRecord, error) {
	query := url.Values{}
	if role != "" {
		query.Set("role", role)
	}
	if search != "" {
		query.Set("search", search)
	}
	var out []AdminRecord
	err := a.c.Do(ctx, Request{Endpoint: "/admin/", Query: query, Auth: true}, &out)
	return out, err
}

// Create adds an admin.
func (a AdminAPI) Create(ctx context.Context, in AdminInput) (AdminRecord, error) {
	var out AdminRecord
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/admin/", JSON: in, Auth: true}, &out)
	return out, err
}

// Update replaces an admin. An empty password leaves it unchanged.
func (a AdminAPI) Update(ctx context.Context, id int64, in AdminInput) (AdminRecord, error) {
	var out AdminRecord
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Endpoint: adminPath(id), JSON: in, Auth: true}, &out)
	return out, err
}

// Delete removes an admin.
func (a AdminAPI) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Endpoint: adminPath(id), Auth: true}, nil)
}

// ToggleStatus flips an admin between Active and Inactive.
func (a AdminAPI) ToggleStatus(ctx context.Context, id int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodPatch, Endpoint: adminPath(id) + "/status", Auth: true}, nil)
}

// Metrics returns the role bucket counters.
func (a AdminAPI) Metrics(ctx context.Context) (AdminMetrics, error) {
	var out AdminMetrics
	err := a.c.Do(ctx, Request{Endpoint: "/admin/metrics", Auth: true}, &out)
	return out, err
}

func adminPath(id int64) string {
	return "/admin/" + strconv.FormatInt(id, 10)
}

// List returns every role.
func (r RolesAPI) List(ctx context.Context) ([]Role, error) {
	var out []Role
	err := r.c.Do(ctx, Request{Endpoint: "/roles", Auth: true}, &out)
	return out, err
}

// Permissions returns the permissions currently bound to a role, in backend order.
func (r RolesAPI) Permissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	err := r.c.Do(ctx, Request{Endpoint: "/roles/" + strconv.FormatInt(roleID, 10) + "/permissions", Auth: true}, &out)
	return out, err
}

// List returns every permission.
func (p PermissionsAPI) List(ctx context.Context) ([]Permission, error) {
	var out []Permission
	err := p.c.Do(ctx, Request{Endpoint: "/permissions", Auth: true}, &out)
	return out, err
}

// Assign writes one user-role-permission record.
func (a AssignmentsAPI) Assign(ctx context.Context, in Assignment) error {
	return a.c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/user-role-permissions", JSON: in, Auth: true}, nil)
}
