package mockapi

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/platform/httpx"
)

type account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	FullName     string
	Bio          string
	Avatar       string
	Status       string
	CreatedAt    time.Time
	LastLogin    time.Time
}

type grant struct {
	UserID       int64
	RoleID       int64
	PermissionID int64
}

// Store is the in-memory state of the mock backend.
type Store struct {
	mu sync.RWMutex

	cost        int
	nextID      int64
	accounts    map[int64]*account
	roles       []gateway.Role
	permissions []gateway.Permission
	rolePerms   map[int64][]int64
	grants      []grant
	consumers   map[string]gateway.Consumer
	stats       gateway.DashboardStats
	charts      gateway.DashboardCharts
	now         func() time.Time
}

// NewStore builds a seeded store. cost is the bcrypt work factor.
func NewStore(cost int) (*Store, error) {
	s := &Store{
		cost:      cost,
		accounts:  map[int64]*account{},
		rolePerms: map[int64][]int64{},
		consumers: seedConsumers(),
		stats:     seedStats(),
		charts:    seedCharts(),
		now:       time.Now,
	}
	for i, name := range seedRoles {
		s.roles = append(s.roles, gateway.Role{ID: int64(i + 1), Name: name})
	}
	for i, name := range seedPermissions {
		s.permissions = append(s.permissions, gateway.Permission{ID: int64(i + 1), ViewName: name})
	}
	for _, role := range s.roles {
		for _, view := range seedRolePermissions[role.Name] {
			s.rolePerms[role.ID] = append(s.rolePerms[role.ID], s.permissionID(view))
		}
	}
	for _, seed := range seedAccounts {
		acc, err := s.insert(seed.username, seed.email, seed.password, seed.fullName)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", seed.username, err)
		}
		s.grantRole(acc.ID, s.roleID(seed.role))
	}
	return s, nil
}

// Register creates a plain account without roles.
func (s *Store) Register(in gateway.Registration) (gateway.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return gateway.User{}, httpx.Errorf(httpx.ErrValidation, "Username, email and password are required")
	}
	acc, err := s.insert(in.Username, in.Email, in.Password, in.FullName)
	if err != nil {
		return gateway.User{}, err
	}
	return acc.user(), nil
}

// Authenticate checks credentials and records the login time.
func (s *Store) Authenticate(username, password string) (gateway.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byUsername(username)
	if acc == nil || bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return gateway.User{}, httpx.Errorf(httpx.ErrValidation, "Incorrect username or password")
	}
	if acc.Status == "Inactive" {
		return gateway.User{}, httpx.Errorf(httpx.ErrValidation, "Account is inactive")
	}
	acc.LastLogin = s.now()
	return acc.user(), nil
}

// Account returns the account of username.
func (s *Store) Account(username string) (gateway.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := s.byUsername(username)
	if acc == nil {
		return gateway.User{}, httpx.ErrUnauthorized
	}
	return acc.user(), nil
}

// UpdateProfile replaces the editable fields of username.
func (s *Store) UpdateProfile(username string, in gateway.ProfileUpdate) (gateway.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byUsername(username)
	if acc == nil {
		return gateway.User{}, httpx.ErrUnauthorized
	}
	if err := s.unique(acc.ID, in.Username, in.Email); err != nil {
		return gateway.User{}, err
	}
	acc.Username, acc.Email = in.Username, in.Email
	acc.FullName, acc.Bio, acc.Avatar = in.FullName, in.Bio, in.Avatar
	return acc.user(), nil
}

// SetPassword rehashes the password of username.
func (s *Store) SetPassword(username, password string) error {
	if password == "" {
		return httpx.Errorf(httpx.ErrValidation, "Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byUsername(username)
	if acc == nil {
		return httpx.ErrUnauthorized
	}
	acc.PasswordHash = hash
	return nil
}

// PermissionSet lists role and permission names held by username, in grant order.
func (s *Store) PermissionSet(username string) (gateway.PermissionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := s.byUsername(username)
	if acc == nil {
		return gateway.PermissionSet{}, httpx.ErrUnauthorized
	}
	out := gateway.PermissionSet{Roles: s.roleNames(acc.ID), Permissions: []string{}}
	for _, g := range s.grants {
		if g.UserID != acc.ID {
			continue
		}
		if name := s.permissionName(g.PermissionID); name != "" && !slices.Contains(out.Permissions, name) {
			out.Permissions = append(out.Permissions, name)
		}
	}
	return out, nil
}

// Users lists every account ordered by id.
func (s *Store) Users() []gateway.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gateway.User, 0, len(s.accounts))
	for _, acc := range s.sorted() {
		out = append(out, acc.user())
	}
	return out
}

// User returns one account.
func (s *Store) User(id int64) (gateway.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return gateway.User{}, httpx.Errorf(httpx.ErrNotFound, "User not found")
	}
	return acc.user(), nil
}

// CreateUser adds an account without roles.
func (s *Store) CreateUser(in gateway.UserInput) (gateway.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Password == "" {
		return gateway.User{}, httpx.Errorf(httpx.ErrValidation, "Password is required")
	}
	acc, err := s.insert(in.Username, in.Email, in.Password, in.FullName)
	if err != nil {
		return gateway.User{}, err
	}
	if in.Status != "" {
		acc.Status = in.Status
	}
	return acc.user(), nil
}

// UpdateUser replaces account fields; an empty password is kept.
func (s *Store) UpdateUser(id int64, in gateway.UserInput) (gateway.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return gateway.User{}, httpx.Errorf(httpx.ErrNotFound, "User not found")
	}
	if err := s.unique(id, in.Username, in.Email); err != nil {
		return gateway.User{}, err
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return gateway.User{}, err
		}
		acc.PasswordHash = hash
	}
	acc.Username, acc.Email, acc.FullName = in.Username, in.Email, in.FullName
	if in.Status != "" {
		acc.Status = in.Status
	}
	return acc.user(), nil
}

// DeleteUser removes an account and its grants.
func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return httpx.Errorf(httpx.ErrNotFound, "User not found")
	}
	delete(s.accounts, id)
	s.grants = slices.DeleteFunc(s.grants, func(g grant) bool { return g.UserID == id })
	return nil
}

// Consumer returns the analytics record of number.
func (s *Store) Consumer(number string) (gateway.Consumer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consumers[number]
	if !ok {
		return gateway.Consumer{}, httpx.Errorf(httpx.ErrNotFound, "User not found")
	}
	return c, nil
}

// Dashboard returns the headline counters and chart series.
func (s *Store) Dashboard() (gateway.DashboardStats, gateway.DashboardCharts) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.charts
}

// Admins lists accounts holding at least one role, narrowed by role and a
// case-insensitive search over username, full name and email.
func (s *Store) Admins(role, search string) []gateway.AdminRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := strings.ToLower(search)
	out := []gateway.AdminRecord{}
	for _, acc := range s.sorted() {
		rec := s.adminRecord(acc)
		if len(rec.Roles) == 0 {
			continue
		}
		if role != "" && role != "All" && !slices.Contains(rec.Roles, role) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(acc.Username+" "+acc.FullName+" "+acc.Email), term) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// AdminMetrics counts admins per bucket.
func (s *Store) AdminMetrics() gateway.AdminMetrics {
	var m gateway.AdminMetrics
	for _, rec := range s.Admins("", "") {
		m.TotalAdmins++
		if rec.Status == "Active" {
			m.ActiveAdmins++
		}
		if slices.Contains(rec.Roles, "Sub-Admin") {
			m.SubAdmins++
		}
		if slices.Contains(rec.Roles, "Analyst") {
			m.Analysts++
		}
	}
	return m
}

// CreateAdmin adds an account and grants each listed role with its permissions.
func (s *Store) CreateAdmin(in gateway.AdminInput) (gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Password == "" {
		return gateway.AdminRecord{}, httpx.Errorf(httpx.ErrValidation, "Password is required")
	}
	roleIDs, err := s.resolveRoles(in.Roles)
	if err != nil {
		return gateway.AdminRecord{}, err
	}
	acc, err := s.insert(in.Username, in.Email, in.Password, in.FullName)
	if err != nil {
		return gateway.AdminRecord{}, err
	}
	for _, id := range roleIDs {
		s.grantRole(acc.ID, id)
	}
	return s.adminRecord(acc), nil
}

// UpdateAdmin replaces fields and roles. An empty password is kept.
func (s *Store) UpdateAdmin(id int64, in gateway.AdminInput) (gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return gateway.AdminRecord{}, httpx.Errorf(httpx.ErrNotFound, "Admin not found")
	}
	roleIDs, err := s.resolveRoles(in.Roles)
	if err != nil {
		return gateway.AdminRecord{}, err
	}
	if err := s.unique(id, in.Username, in.Email); err != nil {
		return gateway.AdminRecord{}, err
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return gateway.AdminRecord{}, err
		}
		acc.PasswordHash = hash
	}
	acc.Username, acc.Email, acc.FullName = in.Username, in.Email, in.FullName
	s.grants = slices.DeleteFunc(s.grants, func(g grant) bool { return g.UserID == id })
	for _, rid := range roleIDs {
		s.grantRole(id, rid)
	}
	return s.adminRecord(acc), nil
}

// ToggleAdmin flips Active and Inactive.
func (s *Store) ToggleAdmin(id int64) (gateway.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return gateway.AdminRecord{}, httpx.Errorf(httpx.ErrNotFound, "Admin not found")
	}
	if acc.Status == "Active" {
		acc.Status = "Inactive"
	} else {
		acc.Status = "Active"
	}
	return s.adminRecord(acc), nil
}

// Roles lists every role.
func (s *Store) Roles() []gateway.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

// Permissions lists every permission.
func (s *Store) Permissions() []gateway.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.permissions)
}

// RolePermissions lists the permissions bound to a role.
func (s *Store) RolePermissions(roleID int64) ([]gateway.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.roleName(roleID) == "" {
		return nil, httpx.Errorf(httpx.ErrNotFound, "Role not found")
	}
	out := []gateway.Permission{}
	for _, pid := range s.rolePerms[roleID] {
		out = append(out, gateway.Permission{ID: pid, ViewName: s.permissionName(pid)})
	}
	return out, nil
}

// Assign replaces the user's grants for the role with the given permissions.
func (s *Store) Assign(in gateway.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[in.UserID]; !ok {
		return httpx.Errorf(httpx.ErrNotFound, "User not found")
	}
	if s.roleName(in.RoleID) == "" {
		return httpx.Errorf(httpx.ErrNotFound, "Role not found")
	}
	for _, pid := range in.PermissionIDs {
		if s.permissionName(pid) == "" {
			return httpx.Errorf(httpx.ErrValidation, fmt.Sprintf("Unknown permission %d", pid))
		}
	}
	s.grants = slices.DeleteFunc(s.grants, func(g grant) bool {
		return g.UserID == in.UserID && g.RoleID == in.RoleID
	})
	for _, pid := range in.PermissionIDs {
		s.grants = append(s.grants, grant{UserID: in.UserID, RoleID: in.RoleID, PermissionID: pid})
	}
	return nil
}

func (s *Store) insert(username, email, password, fullName string) (*account, error) {
	if err := s.unique(0, username, email); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	s.nextID++
	acc := &account{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Status:       "Active",
		CreatedAt:    s.now(),
	}
	s.accounts[acc.ID] = acc
	return acc, nil
}

func (s *Store) unique(self int64, username, email string) error {
	for id, acc := range s.accounts {
		if id == self {
			continue
		}
		if strings.EqualFold(acc.Username, username) || strings.EqualFold(acc.Email, email) {
			return httpx.Errorf(httpx.ErrDuplicate, "Username or email already registered")
		}
	}
	return nil
}

// grantRole binds every permission of the role's default mapping.
func (s *Store) grantRole(userID, roleID int64) {
	for _, pid := range s.rolePerms[roleID] {
		s.grants = append(s.grants, grant{UserID: userID, RoleID: roleID, PermissionID: pid})
	}
}

func (s *Store) resolveRoles(names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id := s.roleID(name)
		if id == 0 {
			return nil, httpx.Errorf(httpx.ErrValidation, "Unknown role "+name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) adminRecord(acc *account) gateway.AdminRecord {
	rec := gateway.AdminRecord{
		ID:       acc.ID,
		Username: acc.Username,
		Email:    acc.Email,
		FullName: acc.FullName,
		Status:   acc.Status,
		Roles:    s.roleNames(acc.ID),
		Avatar:   acc.Avatar,
	}
	if !acc.LastLogin.IsZero() {
		rec.LastLogin = acc.LastLogin.UTC().Format("2006-01-02T15:04:05")
	}
	return rec
}

func (s *Store) roleNames(userID int64) []string {
	names := []string{}
	for _, g := range s.grants {
		if g.UserID != userID {
			continue
		}
		if name := s.roleName(g.RoleID); name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func (s *Store) byUsername(username string) *account {
	for _, acc := range s.accounts {
		if acc.Username == username {
			return acc
		}
	}
	return nil
}

func (s *Store) sorted() []*account {
	out := make([]*account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) roleID(name string) int64 {
	for _, r := range s.roles {
		if r.Name == name {
			return r.ID
		}
	}
	return 0
}

func (s *Store) roleName(id int64) string {
	for _, r := range s.roles {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}

func (s *Store) permissionID(view string) int64 {
	for _, p := range s.permissions {
		if p.ViewName == view {
			return p.ID
		}
	}
	return 0
}

func (s *Store) permissionName(id int64) string {
	for _, p := range s.permissions {
		if p.ID == id {
			return p.ViewName
		}
	}
	return ""
}

func (a *account) user() gateway.User {
	return gateway.User{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		Bio:       a.Bio,
		Avatar:    a.Avatar,
		Status:    a.Status,
		CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
	}
}
