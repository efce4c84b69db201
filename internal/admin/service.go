package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/shared"
)

// Backend is the admin endpoint set.
type Backend interface {
	List(ctx context.Context, role, search string) ([]gateway.AdminRecord, error)
	Create(ctx context.Context, in gateway.AdminInput) (gateway.AdminRecord, error)
	Update(ctx context.Context, id int64, in gateway.AdminInput) (gateway.AdminRecord, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) error
	Metrics(ctx context.Context) (gateway.AdminMetrics, error)
}

// Directory supplies users, roles and permissions for role assignment.
type Directory interface {
	Users(ctx context.Context) ([]gateway.User, error)
	Roles(ctx context.Context) ([]gateway.Role, error)
	Permissions(ctx context.Context) ([]gateway.Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]gateway.Permission, error)
	Assign(ctx context.Context, in gateway.Assignment) error
}

// Overview is the admin list together with its metrics.
type Overview struct {
	Admins  []Admin
	Metrics gateway.AdminMetrics
}

// AssignmentOptions are the choices of the assignment form.
type AssignmentOptions struct {
	Users       []gateway.User
	Roles       []gateway.Role
	Permissions []gateway.Permission
}

// Service orchestrates admin management against the backend.
type Service struct {
	backend   Backend
	directory Directory
}

// NewService constructs a Service.
func NewService(backend Backend, directory Directory) *Service {
	return &Service{backend: backend, directory: directory}
}

// Overview fetches admins and metrics concurrently. If either call fails
// both are reset: an empty list and all-zero metrics.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		records []gateway.AdminRecord
		metrics gateway.AdminMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.backend.List(gctx, "", "")
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = s.backend.Metrics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{Admins: []Admin{}}, err
	}
	admins := make([]Admin, 0, len(records))
	for _, rec := range records {
		admins = append(admins, FromRecord(rec))
	}
	return Overview{Admins: admins, Metrics: metrics}, nil
}

// Find returns one admin from the full list.
func (s *Service) Find(ctx context.Context, id int64) (Admin, error) {
	records, err := s.backend.List(ctx, "", "")
	if err != nil {
		return Admin{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return FromRecord(rec), nil
		}
	}
	return Admin{}, fmt.Errorf("admin %d: %w", id, shared.ErrNotFound)
}

// Create validates and submits a new admin.
func (s *Service) Create(ctx context.Context, form Form) error {
	form = form.Normalize()
	if err := form.Validate(true); err != nil {
		return err
	}
	_, err := s.backend.Create(ctx, form.Payload())
	return err
}

// Update validates and submits an edited admin. An empty password is left unchanged.
func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	form = form.Normalize()
	if err := form.Validate(false); err != nil {
		return err
	}
	_, err := s.backend.Update(ctx, id, form.Payload())
	return err
}

// Delete removes an admin.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.backend.Delete(ctx, id)
}

// ToggleStatus flips an admin between Active and Inactive.
func (s *Service) ToggleStatus(ctx context.Context, id int64) error {
	return s.backend.ToggleStatus(ctx, id)
}

// AssignmentOptions loads users, roles and permissions concurrently with a joint reset on failure.
func (s *Service) AssignmentOptions(ctx context.Context) (AssignmentOptions, error) {
	var opts AssignmentOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Users, err = s.directory.Users(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Roles, err = s.directory.Roles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Permissions, err = s.directory.Permissions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return AssignmentOptions{}, err
	}
	return opts, nil
}

// AssignRole expands the role into its current permission set and writes a
// single assignment carrying all of it, in backend order.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) (gateway.Assignment, error) {
	if userID <= 0 || roleID <= 0 {
		return gateway.Assignment{}, &ValidationError{Message: "Please select both a user and a role"}
	}
	perms, err := s.directory.RolePermissions(ctx, roleID)
	if err != nil {
		return gateway.Assignment{}, fmt.Errorf("load role permissions: %w", err)
	}
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	assignment := gateway.Assignment{UserID: userID, RoleID: roleID, PermissionIDs: ids}
	if err := s.directory.Assign(ctx, assignment); err != nil {
		return gateway.Assignment{}, err
	}
	return assignment, nil
}
