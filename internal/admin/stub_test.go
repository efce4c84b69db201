package admin_test

import (
	"context"
	"errors"
	"sync"

	"github.com/gridpulse/console/internal/gateway"
)

var errBackend = &gateway.Error{Status: 500, Message: "database locked"}

type stubBackend struct {
	mu         sync.Mutex
	records    []gateway.AdminRecord
	listErr    error
	metricsErr error
	created    []gateway.AdminInput
	updated    map[int64]gateway.AdminInput
	deleted    []int64
	toggled    []int64
	calls      int
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		records: []gateway.AdminRecord{
			{ID: 1, Username: "root", FullName: "Root Admin", Email: "root@example.com", Status: "Active", Roles: []string{"Super-Admin"}},
			{ID: 2, Username: "ana", Email: "ana@example.com", Status: "Inactive", Roles: []string{"Analyst"}},
		},
		updated: map[int64]gateway.AdminInput{},
	}
}

func (s *stubBackend) List(ctx context.Context, role, search string) ([]gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]gateway.AdminRecord(nil), s.records...), nil
}

func (s *stubBackend) Create(ctx context.Context, in gateway.AdminInput) (gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.created = append(s.created, in)
	return gateway.AdminRecord{ID: int64(len(s.records) + 1)}, nil
}

func (s *stubBackend) Update(ctx context.Context, id int64, in gateway.AdminInput) (gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.updated[id] = in
	return gateway.AdminRecord{ID: id}, nil
}

func (s *stubBackend) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return &gateway.Error{Status: 404, Message: "Admin not found"}
}

func (s *stubBackend) ToggleStatus(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.toggled = append(s.toggled, id)
	return nil
}

func (s *stubBackend) Metrics(ctx context.Context) (gateway.AdminMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.metricsErr != nil {
		return gateway.AdminMetrics{}, s.metricsErr
	}
	return gateway.AdminMetrics{TotalAdmins: 2, ActiveAdmins: 1, Analysts: 1}, nil
}

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubDirectory struct {
	mu          sync.Mutex
	rolePerms   map[int64][]gateway.Permission
	rolesErr    error
	assignments []gateway.Assignment
	permCalls   []int64
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{rolePerms: map[int64][]gateway.Permission{
		2: {{ID: 7, ViewName: "home_dashboard"}, {ID: 9, ViewName: "user_dashboard"}},
	}}
}

func (d *stubDirectory) Users(ctx context.Context) ([]gateway.User, error) {
	return []gateway.User{{ID: 5, Username: "meter.reader", Email: "reader@example.com"}}, nil
}

func (d *stubDirectory) Roles(ctx context.Context) ([]gateway.Role, error) {
	if d.rolesErr != nil {
		return nil, d.rolesErr
	}
	return []gateway.Role{{ID: 1, Name: "Super-Admin"}, {ID: 2, Name: "Admin"}}, nil
}

func (d *stubDirectory) Permissions(ctx context.Context) ([]gateway.Permission, error) {
	return []gateway.Permission{{ID: 7, ViewName: "home_dashboard"}, {ID: 9, ViewName: "user_dashboard"}}, nil
}

func (d *stubDirectory) RolePermissions(ctx context.Context, roleID int64) ([]gateway.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permCalls = append(d.permCalls, roleID)
	perms, ok := d.rolePerms[roleID]
	if !ok {
		return nil, errors.New("unknown role")
	}
	return perms, nil
}

func (d *stubDirectory) Assign(ctx context.Context, in gateway.Assignment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.assignments = append(d.assignments, in)
	return nil
}
