package layout

import (
	"strings"

	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/view"
)

// Route is one client visible page.
type Route struct {
	Path        string
	Label       string
	Public      bool
	InNav       bool
	Requirement guard.Requirement
}

// Routes lists every page in sidebar order.
var Routes = []Route{
	{Path: "/login", Label: "Sign in", Public: true},
	{Path: "/register", Label: "Register", Public: true},
	{Path: "/dashboard", Label: "Dashboard", InNav: true, Requirement: guard.Dashboard},
	{Path: "/users", Label: "Users", InNav: true, Requirement: guard.Users},
	{Path: "/analytics", Label: "Analytics", InNav: true, Requirement: guard.Analytics},
	{Path: "/admin", Label: "Admin Management", InNav: true, Requirement: guard.Admin},
	{Path: "/profile", Label: "Profile", Requirement: guard.Authenticated},
}

// Lookup finds the route owning path, including nested paths such as /admin/3/edit.
func Lookup(path string) (Route, bool) {
	for _, route := range Routes {
		if matches(route.Path, path) {
			return route, true
		}
	}
	return Route{}, false
}

// IsPublic reports whether path is reachable without signing in.
func IsPublic(path string) bool {
	route, ok := Lookup(path)
	return ok && route.Public
}

// Frame computes the chrome for path. The chrome is hidden for anonymous
// visitors and on public pages; the sidebar lists only pages the guard allows.
func Frame(state session.State, path string) view.Chrome {
	if !state.Authenticated() || IsPublic(path) {
		return view.Chrome{}
	}
	chrome := view.Chrome{
		Show:      true,
		UserLabel: state.Identity.DisplayName(),
		UserEmail: state.Identity.Email,
	}
	for _, route := range Routes {
		if !route.InNav || !guard.Allows(state, route.Requirement) {
			continue
		}
		chrome.Nav = append(chrome.Nav, view.NavItem{
			Label:  route.Label,
			Path:   route.Path,
			Active: matches(route.Path, path),
		})
	}
	return chrome
}

func matches(routePath, path string) bool {
	return path == routePath || strings.HasPrefix(path, routePath+"/")
}
