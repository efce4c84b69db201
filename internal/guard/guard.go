package guard

import (
	"log/slog"
	"net/http"

	"github.com/gridpulse/console/internal/session"
)

// Role names understood by the console.
const (
	RoleSuperAdmin = "Super-Admin"
	RoleAdmin      = "Admin"
	RoleSubAdmin   = "Sub-Admin"
	RoleAnalyst    = "Analyst"
)

// Permission names granted per view.
const (
	PermHomeDashboard      = "home_dashboard"
	PermUserDashboard      = "user_dashboard"
	PermAnalyticsDashboard = "analytics_dashboard"
)

// Requirement is what an identity must hold to open a page. Empty fields are not checked.
type Requirement struct {
	Permission string
	AnyRole    []string
}

// Named requirements for the guarded pages and actions.
var (
	Authenticated = Requirement{}
	Dashboard     = Requirement{Permission: PermHomeDashboard}
	Users         = Requirement{Permission: PermUserDashboard}
	Analytics     = Requirement{Permission: PermAnalyticsDashboard}
	Admin         = Requirement{AnyRole: []string{RoleSuperAdmin, RoleAdmin}}
	ManageAdmins  = Requirement{AnyRole: []string{RoleSuperAdmin}}
	AssignRoles   = Requirement{AnyRole: []string{RoleSuperAdmin, RoleAdmin}}
)

// Outcome is the result of a guard decision.
type Outcome int

const (
	Render Outcome = iota
	Loading
	RedirectLogin
	NotAuthorized
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case NotAuthorized:
		return "not_authorized"
	default:
		return "unknown"
	}
}

// Decide evaluates loading, authentication, permission and role in that
// order. The first failing check determines the outcome.
func Decide(state session.State, req Requirement) Outcome {
	if state.Loading {
		return Loading
	}
	if !state.Authenticated() {
		return RedirectLogin
	}
	if req.Permission != "" && !state.Identity.HasPermission(req.Permission) {
		return NotAuthorized
	}
	if len(req.AnyRole) > 0 && !state.Identity.HasAnyRole(req.AnyRole...) {
		return NotAuthorized
	}
	return Render
}

// Allows is Decide reduced to a yes/no answer.
func Allows(state session.State, req Requirement) bool {
	return Decide(state, req) == Render
}

// CanManageAdmins reports whether admin create, edit, delete and status controls apply.
func CanManageAdmins(state session.State) bool {
	return Allows(state, ManageAdmins)
}

// CanAssignRoles reports whether the role assignment workflow applies.
func CanAssignRoles(state session.State) bool {
	return Allows(state, AssignRoles)
}

// PageRenderer draws the pages the guard answers with.
type PageRenderer interface {
	RenderLoading(w http.ResponseWriter, r *http.Request)
	RenderNotAuthorized(w http.ResponseWriter, r *http.Request)
}

// Guard enforces requirements on routes.
type Guard struct {
	pages  PageRenderer
	logger *slog.Logger
}

// New constructs a Guard.
func New(pages PageRenderer, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{pages: pages, logger: logger}
}

// Require returns middleware that only lets requests through when req is satisfied.
func (g *Guard) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session.FromContext(r.Context())
			switch outcome := Decide(state, req); outcome {
			case Render:
				next.ServeHTTP(w, r)
			case Loading:
				w.Header().Set("Retry-After", "1")
				g.pages.RenderLoading(w, r)
			case RedirectLogin:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			default:
				g.logger.Info("access denied",
					slog.String("path", r.URL.Path),
					slog.String("user", state.Identity.Username),
					slog.String("outcome", outcome.String()))
				g.pages.RenderNotAuthorized(w, r)
			}
		})
	}
}
