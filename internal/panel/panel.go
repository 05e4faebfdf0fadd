package panel

import (
	"context"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// Gateway defines the operations the bot performs against the Remnawave panel
type Gateway interface {
	// User operations
	ListUsers(ctx context.Context, offset, limit int) (*models.UserPage, error)
	GetUser(ctx context.Context, uuid string) (*models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, uuid string, patch models.Patch) (*models.User, error)
	DeleteUser(ctx context.Context, uuid string) error

	// ExtendUser moves the expiry forward by days, counting from now if the
	// subscription has already expired.
	ExtendUser(ctx context.Context, uuid string, days int) (*models.User, error)
	ResetUserTraffic(ctx context.Context, uuid string) (*models.User, error)
	EnableUser(ctx context.Context, uuid string) (*models.User, error)
	DisableUser(ctx context.Context, uuid string) (*models.User, error)

	// Host operations
	ListHosts(ctx context.Context) ([]models.Host, error)
	GetHost(ctx context.Context, uuid string) (*models.Host, error)
	CreateHost(ctx context.Context, req models.CreateHostRequest) (*models.Host, error)
	UpdateHost(ctx context.Context, uuid string, patch models.Patch) (*models.Host, error)
	DeleteHost(ctx context.Context, uuid string) error

	// ListInbounds returns every config profile inbound
	ListInbounds(ctx context.Context) ([]models.Inbound, error)

	// Node operations
	ListNodes(ctx context.Context) ([]models.Node, error)
	GetNode(ctx context.Context, uuid string) (*models.Node, error)
	CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error)
	UpdateNode(ctx context.Context, uuid string, patch models.Patch) (*models.Node, error)
	DeleteNode(ctx context.Context, uuid string) error
	EnableNode(ctx context.Context, uuid string) (*models.Node, error)
	DisableNode(ctx context.Context, uuid string) (*models.Node, error)
	RestartNode(ctx context.Context, uuid string) error

	// Device (HWID) operations
	ListDevices(ctx context.Context, offset, limit int) (*models.DevicePage, error)
	HWIDStats(ctx context.Context) (*models.HWIDStats, error)
	ListUserDevices(ctx context.Context, userUUID string) ([]models.Device, error)
	DeleteUserDevice(ctx context.Context, userUUID, hwid string) error
	DeleteAllUserDevices(ctx context.Context, userUUID string) error

	// Squad operations
	ListSquads(ctx context.Context) ([]models.Squad, error)
	GetSquad(ctx context.Context, uuid string) (*models.Squad, error)
	DeleteSquad(ctx context.Context, uuid string) error

	SystemStats(ctx context.Context) (*models.SystemStats, error)
}
