package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
)

const (
	requestTimeout = 15 * time.Second
	homePath       = "/dashboard"
	loginPath      = "/login"
)

// Account covers the self-service endpoints outside the session store.
type Account interface {
	Register(ctx context.Context, in gateway.Registration) (gateway.User, error)
	UpdateProfile(ctx context.Context, in gateway.ProfileUpdate) (gateway.User, error)
	UpdatePassword(ctx context.Context, password string) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	store        *session.Store
	account      Account
	sessions     *shared.SessionManager
	pages        *layout.Renderer
	guard        *guard.Guard
	validator    *validator.Validate
	loginLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginRate caps login attempts
// per client IP and minute; zero disables the limit.
func NewHandler(logger *slog.Logger, store *session.Store, account Account, sessions *shared.SessionManager, pages *layout.Renderer, g *guard.Guard, loginRate int) *Handler {
	h := &Handler{
		logger:    logger,
		store:     store,
		account:   account,
		sessions:  sessions,
		pages:     pages,
		guard:     g,
		validator: validator.New(),
	}
	h.loginLimiter = func(next http.Handler) http.Handler { return next }
	if loginRate > 0 {
		h.loginLimiter = httprate.Limit(loginRate, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(h.tooManyAttempts),
		)
	}
	return h
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get(loginPath, h.showLogin)
	r.With(h.loginLimiter).Post(loginPath, h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(guard.Authenticated))
		r.Get("/profile", h.showProfile)
		r.Post("/profile", h.handleProfile)
		r.Post("/profile/password", h.handlePassword)
	})
}

type loginPageData struct {
	Form   loginForm
	Errors formErrors
}

type registerPageData struct {
	Form   registerForm
	Errors formErrors
}

type profilePageData struct {
	Identity       *session.Identity
	Form           profileForm
	Errors         formErrors
	PasswordErrors formErrors
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, homePath, http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, "pages/login.html", "Sign in", loginPageData{Errors: formErrors{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderLogin(w, r, form, describe(err), http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sess := shared.SessionFromContext(r.Context())
	identity, err := h.store.Login(ctx, sess, session.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		h.logger.Info("login failed", slog.String("username", form.Username), slog.Any("error", err))
		msg, status := loginFailure(err)
		h.renderLogin(w, r, form, formErrors{"general": msg}, status)
		return
	}
	h.logger.Info("login", slog.String("username", identity.Username))
	layout.RedirectWithFlash(w, r, homePath, shared.FlashSuccess, "Welcome back, "+identity.DisplayName())
}

// loginFailure maps a login error onto the message shown above the form.
func loginFailure(err error) (string, int) {
	if gateway.IsTransport(err) {
		return gateway.ConnectMessage, http.StatusBadGateway
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message, http.StatusUnauthorized
	}
	return "Login failed", http.StatusUnauthorized
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, form loginForm, errs formErrors, status int) {
	form.Password = ""
	h.pages.Render(w, r, "pages/login.html", "Sign in", loginPageData{Form: form, Errors: errs}, status)
}

func (h *Handler) tooManyAttempts(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("login rate limited", slog.String("remote", r.RemoteAddr))
	h.renderLogin(w, r, loginForm{}, formErrors{"general": "Too many sign-in attempts. Please wait a minute and try again."}, http.StatusTooManyRequests)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "pages/register.html", "Register", registerPageData{Errors: formErrors{}}, http.StatusOK)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}
	render := func(errs formErrors, status int) {
		form.Password, form.Confirm = "", ""
		h.pages.Render(w, r, "pages/register.html", "Register", registerPageData{Form: form, Errors: errs}, status)
	}
	if err := h.validator.Struct(form); err != nil {
		render(describe(err), http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, err := h.account.Register(ctx, gateway.Registration{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
	if err != nil {
		h.logger.Info("registration failed", slog.String("username", form.Username), slog.Any("error", err))
		status := http.StatusBadRequest
		if gateway.IsTransport(err) {
			status = http.StatusBadGateway
		}
		render(formErrors{"general": shared.UserSafeMessage(err)}, status)
		return
	}
	layout.RedirectWithFlash(w, r, loginPath, shared.FlashSuccess, "Registration successful. Please sign in.")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.store.Logout(sess)
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	identity := session.FromContext(r.Context()).Identity
	data := profilePageData{
		Identity: identity,
		Form: profileForm{
			Username: identity.Username,
			Email:    identity.Email,
			FullName: identity.FullName,
			Bio:      identity.Bio,
			Avatar:   identity.Avatar,
		},
		Errors:         formErrors{},
		PasswordErrors: formErrors{},
	}
	h.pages.Render(w, r, "pages/profile.html", "Profile", data, http.StatusOK)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := profileForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		Bio:      strings.TrimSpace(r.PostFormValue("bio")),
		Avatar:   strings.TrimSpace(r.PostFormValue("avatar")),
	}
	data := profilePageData{
		Identity:       session.FromContext(r.Context()).Identity,
		Form:           form,
		PasswordErrors: formErrors{},
	}
	if err := h.validator.Struct(form); err != nil {
		data.Errors = describe(err)
		h.pages.Render(w, r, "pages/profile.html", "Profile", data, http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, err := h.account.UpdateProfile(ctx, gateway.ProfileUpdate{
		Username: form.Username,
		Email:    form.Email,
		FullName: form.FullName,
		Bio:      form.Bio,
		Avatar:   form.Avatar,
	})
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Error("update profile", slog.Any("error", err))
		data.Errors = formErrors{"general": shared.UserSafeMessage(err)}
		h.pages.Render(w, r, "pages/profile.html", "Profile", data, http.StatusBadGateway)
		return
	}
	if _, err := h.store.Refresh(ctx, shared.SessionFromContext(r.Context())); err != nil {
		// A changed username invalidates the token issued for the old one.
		if h.pages.Expired(w, r, err) {
			return
		}
		h.logger.Warn("refresh identity", slog.Any("error", err))
	}
	layout.RedirectWithFlash(w, r, "/profile", shared.FlashSuccess, "Profile updated successfully")
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := passwordForm{Password: r.PostFormValue("password"), Confirm: r.PostFormValue("confirm")}
	identity := session.FromContext(r.Context()).Identity
	data := profilePageData{
		Identity: identity,
		Form: profileForm{
			Username: identity.Username,
			Email:    identity.Email,
			FullName: identity.FullName,
			Bio:      identity.Bio,
			Avatar:   identity.Avatar,
		},
		Errors: formErrors{},
	}
	if err := h.validator.Struct(form); err != nil {
		data.PasswordErrors = describe(err)
		h.pages.Render(w, r, "pages/profile.html", "Profile", data, http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.account.UpdatePassword(ctx, form.Password); err != nil {
		if h.pages.Expired(w, r, err) {
			return
		}
		h.logger.Error("update password", slog.Any("error", err))
		data.PasswordErrors = formErrors{"general": shared.UserSafeMessage(err)}
		h.pages.Render(w, r, "pages/profile.html", "Profile", data, http.StatusBadGateway)
		return
	}
	layout.RedirectWithFlash(w, r, "/profile", shared.FlashSuccess, "Password updated successfully")
}
