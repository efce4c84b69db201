package mockapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/mockapi"
)

func newBackend(t *testing.T) *gateway.Client {
	t.Helper()
	store, err := mockapi.NewStore(bcrypt.MinCost)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(mockapi.NewServer(logger, store, mockapi.NewTokens("test-secret", time.Hour)).Routes())
	t.Cleanup(srv.Close)
	return gateway.NewClient(srv.URL, 5*time.Second)
}

func signIn(t *testing.T, client *gateway.Client, username, password string) context.Context {
	t.Helper()
	tok, err := client.Auth().Login(context.Background(), username, password)
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	return gateway.WithToken(context.Background(), tok.AccessToken)
}

func TestLoginAndIdentity(t *testing.T) {
	client := newBackend(t)
	ctx := signIn(t, client, mockapi.SuperAdminUsername, mockapi.SuperAdminPassword)

	me, err := client.Auth().CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	perms, err := client.Auth().Permissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Super-Admin"}, perms.Roles)
	assert.ElementsMatch(t, []string{"home_dashboard", "analytics_dashboard", "user_dashboard"}, perms.Permissions)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	client := newBackend(t)
	_, err := client.Auth().Login(context.Background(), "admin", "wrong")
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)
	assert.Equal(t, "Incorrect username or password", gwErr.Message)
}

func TestProtectedEndpointsNeedToken(t *testing.T) {
	client := newBackend(t)
	_, err := client.Auth().CurrentUser(context.Background())
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.Status)
	assert.Equal(t, "Could not validate credentials", gwErr.Message)

	_, err = client.Auth().CurrentUser(gateway.WithToken(context.Background(), "garbage"))
	assert.Equal(t, http.StatusUnauthorized, gateway.StatusOf(err))
}

func TestConsumerLookup(t *testing.T) {
	client := newBackend(t)
	c, err := client.Users().ByNumber(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "user3@example.com", c.Email)
	assert.Len(t, c.UsageHistory, 6)
	for _, p := range c.UsageHistory {
		assert.GreaterOrEqual(t, p.Usage, 150.0)
		assert.LessOrEqual(t, p.Usage, 300.0)
	}

	_, err = client.Users().ByNumber(context.Background(), "99")
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.Status)
	assert.Equal(t, "User not found", gwErr.Message)
}

func TestDashboardData(t *testing.T) {
	client := newBackend(t)
	stats, err := client.Dashboard().Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stats.TotalUsers)

	charts, err := client.Dashboard().Charts(context.Background())
	require.NoError(t, err)
	assert.Len(t, charts.Regions, 9)
	assert.InDelta(t, 82.82, charts.Phase.SinglePhase, 0.001)
}

func TestAdminLifecycle(t *testing.T) {
	client := newBackend(t)
	ctx := signIn(t, client, "admin", "admin123")
	admins := client.Admin()

	created, err := admins.Create(ctx, gateway.AdminInput{
		Username: "Field Lead", FullName: "Field Lead", Email: "lead@example.com", Password: "pw123456", Roles: []string{"Sub-Admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub-Admin"}, created.Roles)
	assert.Equal(t, "Active", created.Status)

	list, err := admins.List(ctx, "Sub-Admin", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.NoError(t, admins.ToggleStatus(ctx, created.ID))
	metrics, err := admins.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, metrics.TotalAdmins)
	assert.Equal(t, 4, metrics.ActiveAdmins)
	assert.Equal(t, 1, metrics.SubAdmins)

	_, err = admins.Update(ctx, created.ID, gateway.AdminInput{Username: "Field Lead", FullName: "Field Lead", Email: "lead@example.com", Roles: []string{"Analyst"}})
	require.NoError(t, err)
	// Password was left untouched by the update.
	signIn(t, client, "Field Lead", "pw123456")

	require.NoError(t, admins.Delete(ctx, created.ID))
	list, err = admins.List(ctx, "", "lead@")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdminMutationsNeedSuperAdmin(t *testing.T) {
	client := newBackend(t)
	ctx := signIn(t, client, "arjun2024", "Arjun@2024!")

	_, err := client.Admin().List(ctx, "", "")
	require.NoError(t, err)

	err = client.Admin().Delete(ctx, 1)
	assert.Equal(t, http.StatusForbidden, gateway.StatusOf(err))
}

func TestAssignRolePermissions(t *testing.T) {
	client := newBackend(t)
	ctx := signIn(t, client, "admin", "admin123")

	roles, err := client.Roles().List(ctx)
	require.NoError(t, err)
	var analyst gateway.Role
	for _, r := range roles {
		if r.Name == "Analyst" {
			analyst = r
		}
	}
	require.NotZero(t, analyst.ID)

	perms, err := client.Roles().Permissions(ctx, analyst.ID)
	require.NoError(t, err)
	ids := []int64{}
	for _, p := range perms {
		ids = append(ids, p.ID)
	}

	user, err := client.Auth().Register(context.Background(), gateway.Registration{Username: "reader", Email: "reader@example.com", Password: "reader123"})
	require.NoError(t, err)
	require.NoError(t, client.Assignments().Assign(ctx, gateway.Assignment{UserID: user.ID, RoleID: analyst.ID, PermissionIDs: ids}))

	readerCtx := signIn(t, client, "reader", "reader123")
	set, err := client.Auth().Permissions(readerCtx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Analyst"}, set.Roles)
	assert.Equal(t, []string{"home_dashboard", "analytics_dashboard"}, set.Permissions)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	client := newBackend(t)
	_, err := client.Auth().Register(context.Background(), gateway.Registration{Username: "admin", Email: "x@example.com", Password: "pw"})
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Username or email already registered", gwErr.Message)
}

func TestPasswordChange(t *testing.T) {
	client := newBackend(t)
	ctx := signIn(t, client, "admin", "admin123")
	require.NoError(t, client.Auth().UpdatePassword(ctx, "rotated99"))

	_, err := client.Auth().Login(context.Background(), "admin", "admin123")
	assert.Error(t, err)
	signIn(t, client, "admin", "rotated99")
}

func TestUserAccountsLifecycle(t *testing.T) {
	client := newBackend(t)
	ctx := context.Background()
	users := client.Users()

	before, err := users.List(ctx)
	require.NoError(t, err)

	created, err := users.Create(ctx, gateway.UserInput{Username: "meter.reader", Email: "reader@example.com", Password: "secret123", FullName: "Meter Reader"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, "meter.reader", created.Username)

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meter Reader", got.FullName)

	updated, err := users.Update(ctx, created.ID, gateway.UserInput{Username: "meter.reader", Email: "reader@example.com", FullName: "Senior Reader", Status: "Inactive"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Reader", updated.FullName)
	assert.Equal(t, "Inactive", updated.Status)

	// The password survived the update; only the status blocks sign-in now.
	_, err = client.Auth().Login(ctx, "meter.reader", "secret123")
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Account is inactive", gwErr.Message)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(before)+1)

	_, err = users.Create(ctx, gateway.UserInput{Username: "meter.reader", Email: "other@example.com", Password: "x"})
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)

	require.NoError(t, users.Delete(ctx, created.ID))
	_, err = users.Get(ctx, created.ID)
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.Status)
	assert.Equal(t, "User not found", gwErr.Message)

	err = users.Delete(ctx, created.ID)
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.Status)
}
