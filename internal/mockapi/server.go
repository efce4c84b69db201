// Package mockapi is an in-memory stand-in for the REST backend the console
// talks to. It serves every endpoint the gateway client consumes.
package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/platform/httpx"
)

type ctxKey struct{}

// Server exposes the mock backend over HTTP.
type Server struct {
	logger *slog.Logger
	store  *Store
	tokens *Tokens
}

// NewServer constructs a Server.
func NewServer(logger *slog.Logger, store *Store, tokens *Tokens) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, store: store, tokens: tokens}
}

// Routes builds the backend router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)

	r.Get("/dashboard/stats", s.dashboardStats)
	r.Get("/dashboard/charts", s.dashboardCharts)

	r.Get("/users/number/{number}", s.consumer)
	r.Get("/users", s.listUsers)
	r.Post("/users", s.createUser)
	r.Get("/users/{id:[0-9]+}", s.getUser)
	r.Put("/users/{id:[0-9]+}", s.updateUser)
	r.Delete("/users/{id:[0-9]+}", s.deleteUser)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/users/me", s.me)
		r.Put("/users/me", s.updateMe)
		r.Put("/users/me/password", s.updatePassword)
		r.Get("/me/permissions", s.myPermissions)

		r.Get("/roles", s.listRoles)
		r.Get("/roles/{id:[0-9]+}/permissions", s.rolePermissions)
		r.Get("/permissions", s.listPermissions)
		r.With(s.requireRole("Super-Admin", "Admin")).Post("/user-role-permissions", s.assign)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", s.listAdmins)
			r.Get("/metrics", s.adminMetrics)
			r.Group(func(r chi.Router) {
				r.Use(s.requireRole("Super-Admin"))
				r.Post("/", s.createAdmin)
				r.Put("/{id:[0-9]+}", s.updateAdmin)
				r.Delete("/{id:[0-9]+}", s.deleteAdmin)
				r.Patch("/{id:[0-9]+}/status", s.toggleAdmin)
			})
		})
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("mockapi request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		username, err := s.tokens.Verify(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if _, err := s.store.Account(username); err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, username)))
	})
}

func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, err := s.store.PermissionSet(caller(r))
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			for _, role := range roles {
				if slices.Contains(set.Roles, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.Errorf(httpx.ErrForbidden, "Not enough permissions"))
		})
	}
}

func caller(r *http.Request) string {
	username, _ := r.Context().Value(ctxKey{}).(string)
	return username
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in gateway.Registration
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := s.store.Register(in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// login takes form-encoded credentials like an OAuth2 password flow.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid form body")
		return
	}
	user, err := s.store.Authenticate(r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, gateway.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.Account(caller(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var in gateway.ProfileUpdate
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := s.store.UpdateProfile(caller(r), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// updatePassword reads the password from a JSON body, or the query string
// when no body is sent.
func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	password := r.URL.Query().Get("password")
	if password == "" {
		var in struct {
			Password string `json:"password"`
		}
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.RespondError(w, err)
			return
		}
		password = in.Password
	}
	if err := s.store.SetPassword(caller(r), password); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Msg(w, "Password updated successfully")
}

func (s *Server) myPermissions(w http.ResponseWriter, r *http.Request) {
	set, err := s.store.PermissionSet(caller(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, set)
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, _ := s.store.Dashboard()
	httpx.JSON(w, http.StatusOK, stats)
}

func (s *Server) dashboardCharts(w http.ResponseWriter, r *http.Request) {
	_, charts := s.store.Dashboard()
	httpx.JSON(w, http.StatusOK, charts)
}

func (s *Server) consumer(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Consumer(chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.User(pathID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in gateway.UserInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := s.store.CreateUser(in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var in gateway.UserInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := s.store.UpdateUser(pathID(r), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(pathID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Msg(w, "User deleted")
}

func (s *Server) listAdmins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	httpx.JSON(w, http.StatusOK, s.store.Admins(q.Get("role"), q.Get("search")))
}

func (s *Server) adminMetrics(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.AdminMetrics())
}

func (s *Server) createAdmin(w http.ResponseWriter, r *http.Request) {
	var in gateway.AdminInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := s.store.CreateAdmin(in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (s *Server) updateAdmin(w http.ResponseWriter, r *http.Request) {
	var in gateway.AdminInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := s.store.UpdateAdmin(pathID(r), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (s *Server) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(pathID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Msg(w, "Admin deleted")
}

func (s *Server) toggleAdmin(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.ToggleAdmin(pathID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.Roles())
}

func (s *Server) rolePermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := s.store.RolePermissions(pathID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.Permissions())
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var in gateway.Assignment
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := s.store.Assign(in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Msg(w, "Role and permissions assigned")
}
