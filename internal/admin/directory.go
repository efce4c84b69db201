package admin

import (
	"context"

	"github.com/gridpulse/console/internal/gateway"
)

// GatewayDirectory adapts the gateway sub-clients to Directory.
type GatewayDirectory struct {
	client *gateway.Client
}

// NewGatewayDirectory constructs a GatewayDirectory.
func NewGatewayDirectory(client *gateway.Client) GatewayDirectory {
	return GatewayDirectory{client: client}
}

func (d GatewayDirectory) Users(ctx context.Context) ([]gateway.User, error) {
	return d.client.Users().List(ctx)
}

func (d GatewayDirectory) Roles(ctx context.Context) ([]gateway.Role, error) {
	return d.client.Roles().List(ctx)
}

func (d GatewayDirectory) Permissions(ctx context.Context) ([]gateway.Permission, error) {
	return d.client.Permissions().List(ctx)
}

func (d GatewayDirectory) RolePermissions(ctx context.Context, roleID int64) ([]gateway.Permission, error) {
	return d.client.Roles().Permissions(ctx, roleID)
}

func (d GatewayDirectory) Assign(ctx context.Context, in gateway.Assignment) error {
	return d.client.Assignments().Assign(ctx, in)
}
