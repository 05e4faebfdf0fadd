package bot

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/view"
)

func (b *Bot) showUsersPage(req *request, page int) error {
	if page < 0 {
		page = 0
	}
	p, err := b.panel.ListUsers(req.ctx, page*view.UsersPageSize, view.UsersPageSize)
	if err != nil {
		return errors.Wrap(err, "list users")
	}
	b.show(req, view.UsersList(p, page))
	return nil
}

func (b *Bot) onUsersPage(req *request, cb view.Callback) error {
	page, err := strconv.Atoi(cb.Arg(0))
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	return b.showUsersPage(req, page)
}

// deviceCount returns -1 when the device list cannot be read; the detail
// view still renders without it.
func (b *Bot) deviceCount(req *request, userUUID string) int {
	devices, err := b.panel.ListUserDevices(req.ctx, userUUID)
	if err != nil {
		b.logger.Warn("Failed to count user devices", zap.String("user_uuid", userUUID), zap.Error(err))
		return -1
	}
	return len(devices)
}

func (b *Bot) userScreen(req *request, u *models.User) view.Screen {
	return view.UserDetail(u, b.deviceCount(req, u.UUID))
}

func (b *Bot) showUser(req *request, id, notice string) error {
	u, err := b.panel.GetUser(req.ctx, id)
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	s := b.userScreen(req, u)
	if notice != "" {
		s = view.Notice(s, notice)
	}
	b.show(req, s)
	return nil
}

func (b *Bot) onUser(req *request, cb view.Callback) error {
	return b.showUser(req, cb.Arg(0), "")
}

func (b *Bot) onUserExtend(req *request, cb view.Callback) error {
	days, err := strconv.Atoi(cb.Arg(1))
	if err != nil || days <= 0 {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	u, err := b.panel.ExtendUser(req.ctx, cb.Arg(0), days)
	if err != nil {
		return errors.Wrap(err, "extend user")
	}
	b.logger.Info("User extended", zap.String("user_uuid", u.UUID), zap.Int("days", days))
	b.show(req, view.Notice(b.userScreen(req, u), fmt.Sprintf("✅ Extended by %d days.", days)))
	return nil
}

type userAction func(req *request, id string) (*models.User, error)

func (b *Bot) runUserAction(req *request, cb view.Callback, name, notice string, action userAction) error {
	u, err := action(req, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, name)
	}
	b.logger.Info("User action", zap.String("action", name), zap.String("user_uuid", u.UUID))
	b.show(req, view.Notice(b.userScreen(req, u), notice))
	return nil
}

func (b *Bot) onUserReset(req *request, cb view.Callback) error {
	return b.runUserAction(req, cb, "reset traffic", "✅ Traffic reset.", func(req *request, id string) (*models.User, error) {
		return b.panel.ResetUserTraffic(req.ctx, id)
	})
}

func (b *Bot) onUserEnable(req *request, cb view.Callback) error {
	return b.runUserAction(req, cb, "enable user", "✅ User enabled.", func(req *request, id string) (*models.User, error) {
		return b.panel.EnableUser(req.ctx, id)
	})
}

func (b *Bot) onUserDisable(req *request, cb view.Callback) error {
	return b.runUserAction(req, cb, "disable user", "🚫 User disabled.", func(req *request, id string) (*models.User, error) {
		return b.panel.DisableUser(req.ctx, id)
	})
}

func (b *Bot) showDevices(req *request, id, notice string) error {
	u, err := b.panel.GetUser(req.ctx, id)
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	devices, err := b.panel.ListUserDevices(req.ctx, id)
	if err != nil {
		return errors.Wrap(err, "list devices")
	}
	s := view.UserDevices(u, devices)
	if notice != "" {
		s = view.Notice(s, notice)
	}
	b.show(req, s)
	return nil
}

func (b *Bot) onUserDevices(req *request, cb view.Callback) error {
	return b.showDevices(req, cb.Arg(0), "")
}

// onDeviceDelete removes one device picked by its position in the list
func (b *Bot) onDeviceDelete(req *request, cb view.Callback) error {
	userUUID := cb.Arg(0)
	idx, err := strconv.Atoi(cb.Arg(1))
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	devices, err := b.panel.ListUserDevices(req.ctx, userUUID)
	if err != nil {
		return errors.Wrap(err, "list devices")
	}
	if idx < 0 || idx >= len(devices) {
		b.alert(req, view.ExpiredAlert)
		return b.showDevices(req, userUUID, "")
	}
	hwid := devices[idx].HWID
	if err := b.panel.DeleteUserDevice(req.ctx, userUUID, hwid); err != nil {
		return errors.Wrap(err, "delete device")
	}
	b.logger.Info("Device removed", zap.String("user_uuid", userUUID), zap.String("hwid", hwid))
	return b.showDevices(req, userUUID, "✅ Device removed.")
}

func (b *Bot) onDevicesClear(req *request, cb view.Callback) error {
	u, err := b.panel.GetUser(req.ctx, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	devices, err := b.panel.ListUserDevices(req.ctx, u.UUID)
	if err != nil {
		return errors.Wrap(err, "list devices")
	}
	if len(devices) == 0 {
		return b.showDevices(req, u.UUID, "No devices to remove.")
	}
	b.show(req, view.DevicesClearConfirm(u, len(devices)))
	return nil
}

func (b *Bot) onDevicesClearOK(req *request, cb view.Callback) error {
	userUUID := cb.Arg(0)
	if err := b.panel.DeleteAllUserDevices(req.ctx, userUUID); err != nil {
		return errors.Wrap(err, "delete all devices")
	}
	b.logger.Info("All devices removed", zap.String("user_uuid", userUUID))
	return b.showDevices(req, userUUID, "✅ All devices removed.")
}
