package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
)

const requestTimeout = 10 * time.Second

const listPath = "/admin"

type formErrors map[string]string

// ListPage is the admin list view model.
type ListPage struct {
	Admins      []Admin
	Metrics     gateway.AdminMetrics
	Query       string
	Role        string
	FilterRoles []string
	Total       int
	CanManage   bool
	CanAssign   bool
	Error       string
}

// FormPage is the create/edit view model.
type FormPage struct {
	ID      int64
	Editing bool
	Form    Form
	Roles   []string
	Errors  formErrors
}

// DeletePage asks for confirmation before deleting.
type DeletePage struct {
	Admin Admin
}

// AssignPage is the role assignment view model.
type AssignPage struct {
	Options AssignmentOptions
	UserID  int64
	RoleID  int64
	Errors  formErrors
}

// Handler serves the admin management pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *layout.Renderer
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages *layout.Renderer, g *guard.Guard) *Handler {
	return &Handler{logger: logger, service: service, pages: pages, guard: g}
}

// MountRoutes registers admin routes. Every mutation is re-checked here
// regardless of which controls the list page showed.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route(listPath, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(guard.Admin))
			r.Get("/", h.list)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(guard.ManageAdmins))
			r.Get("/new", h.showCreate)
			r.Post("/", h.create)
			r.Get("/{id}/edit", h.showEdit)
			r.Post("/{id}", h.update)
			r.Get("/{id}/delete", h.showDelete)
			r.Post("/{id}/delete", h.delete)
			r.Post("/{id}/status", h.toggleStatus)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.Require(guard.AssignRoles))
			r.Get("/assign", h.showAssign)
			r.Post("/assign", h.assign)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state := session.FromContext(r.Context())
	page := ListPage{
		Query:       strings.TrimSpace(r.URL.Query().Get("q")),
		Role:        r.URL.Query().Get("role"),
		FilterRoles: FilterRoles,
		CanManage:   guard.CanManageAdmins(state),
		CanAssign:   guard.CanAssignRoles(state),
	}
	if page.Role == "" {
		page.Role = RoleAll
	}

	overview, err := h.service.Overview(ctx)
	if h.pages.Expired(w, r, err) {
		return
	}
	page.Metrics = overview.Metrics
	page.Admins = Filter{Query: page.Query, Role: page.Role}.Apply(overview.Admins)
	page.Total = len(page.Admins)
	status := http.StatusOK
	if err != nil {
		h.logger.Error("load admins", slog.Any("error", err))
		page.Error = shared.UserSafeMessage(err)
		status = http.StatusBadGateway
	}
	h.pages.Render(w, r, "pages/admin_list.html", "Admin Management", page, status)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	page := FormPage{Form: Form{Role: FormRoles[0]}, Roles: FormRoles, Errors: formErrors{}}
	h.pages.Render(w, r, "pages/admin_form.html", "Add Admin", page, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.Create(ctx, form); err != nil {
		h.formFailed(w, r, FormPage{Form: form}, err)
		return
	}
	layout.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, "Admin created successfully")
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	admin, err := h.service.Find(ctx, id)
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Warn("load admin", slog.Int64("id", id), slog.Any("error", err))
		layout.RedirectWithFlash(w, r, listPath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	page := FormPage{
		ID:      id,
		Editing: true,
		Form:    Form{Name: admin.Name, Email: admin.Email, Role: admin.PrimaryRole()},
		Roles:   FormRoles,
		Errors:  formErrors{},
	}
	h.pages.Render(w, r, "pages/admin_form.html", "Edit Admin", page, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.Update(ctx, id, form); err != nil {
		h.formFailed(w, r, FormPage{ID: id, Editing: true, Form: form}, err)
		return
	}
	layout.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, "Admin updated successfully")
}

func (h *Handler) showDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	admin, err := h.service.Find(ctx, id)
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		layout.RedirectWithFlash(w, r, listPath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	h.pages.Render(w, r, "pages/admin_delete.html", "Delete Admin", DeletePage{Admin: admin}, http.StatusOK)
}

// delete only acts on an explicit confirmation.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		if h.pages.Expired(w, r, err) {
			return
		}
		h.logger.Error("delete admin", slog.Int64("id", id), slog.Any("error", err))
		layout.RedirectWithFlash(w, r, listPath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	layout.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, "Admin deleted successfully")
}

func (h *Handler) toggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.ToggleStatus(ctx, id); err != nil {
		if h.pages.Expired(w, r, err) {
			return
		}
		h.logger.Error("toggle admin status", slog.Int64("id", id), slog.Any("error", err))
		layout.RedirectWithFlash(w, r, listPath, shared.FlashError, shared.UserSafeMessage(err))
		return
	}
	layout.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, "Admin status updated")
}

func (h *Handler) showAssign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page := AssignPage{Errors: formErrors{}}
	status := http.StatusOK
	opts, err := h.service.AssignmentOptions(ctx)
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Error("load assignment options", slog.Any("error", err))
		page.Errors["general"] = shared.UserSafeMessage(err)
		status = http.StatusBadGateway
	}
	page.Options = opts
	h.pages.Render(w, r, "pages/admin_assign.html", "Assign Role", page, status)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	userID, _ := strconv.ParseInt(r.PostForm.Get("user_id"), 10, 64)
	roleID, _ := strconv.ParseInt(r.PostForm.Get("role_id"), 10, 64)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := h.service.AssignRole(ctx, userID, roleID); err != nil {
		if h.pages.Expired(w, r, err) {
			return
		}
		page := AssignPage{UserID: userID, RoleID: roleID, Errors: formErrors{"general": shared.UserSafeMessage(err)}}
		status := http.StatusUnprocessableEntity
		var verr *ValidationError
		if !errors.As(err, &verr) {
			h.logger.Error("assign role", slog.Int64("user_id", userID), slog.Int64("role_id", roleID), slog.Any("error", err))
			status = http.StatusBadGateway
		}
		if opts, optErr := h.service.AssignmentOptions(ctx); optErr == nil {
			page.Options = opts
		}
		h.pages.Render(w, r, "pages/admin_assign.html", "Assign Role", page, status)
		return
	}
	layout.RedirectWithFlash(w, r, listPath, shared.FlashSuccess, "Role assigned successfully")
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return Form{}, false
	}
	return Form{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     r.PostForm.Get("role"),
	}, true
}

// formFailed re-renders the form. Validation problems answer 422, backend
// failures 502.
func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, page FormPage, err error) {
	if h.pages.Expired(w, r, err) {
		return
	}
	page.Roles = FormRoles
	page.Form.Password = ""
	page.Errors = formErrors{"general": shared.UserSafeMessage(err)}
	status := http.StatusUnprocessableEntity
	var verr *ValidationError
	if !errors.As(err, &verr) {
		h.logger.Error("save admin", slog.Int64("id", page.ID), slog.Any("error", err))
		status = http.StatusBadGateway
	}
	title := "Add Admin"
	if page.Editing {
		title = "Edit Admin"
	}
	h.pages.Render(w, r, "pages/admin_form.html", title, page, status)
}

func (h *Handler) adminID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		layout.RedirectWithFlash(w, r, listPath, shared.FlashError,
			shared.UserSafeMessage(fmt.Errorf("admin %q: %w", chi.URLParam(r, "id"), shared.ErrNotFound)))
		return 0, false
	}
	return id, true
}
