package bot

import (
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// showDevicesPage lists devices across all users. The counters in the
// header are optional; the list is shown without them if they fail.
func (b *Bot) showDevicesPage(req *request, page int, notice string) error {
	if page < 0 {
		page = 0
	}
	p, err := b.panel.ListDevices(req.ctx, page*view.DevicesPageSize, view.DevicesPageSize)
	if err != nil {
		return errors.Wrap(err, "list devices")
	}
	stats, err := b.panel.HWIDStats(req.ctx)
	if err != nil {
		b.logger.Warn("Failed to load device stats", zap.Error(err))
		stats = nil
	}

	s := view.DevicesList(p, stats, page)
	if notice != "" {
		s = view.Notice(s, notice)
	}
	b.show(req, s)
	return nil
}

func (b *Bot) onDevicesPage(req *request, cb view.Callback) error {
	page, err := strconv.Atoi(cb.Arg(0))
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	return b.showDevicesPage(req, page, "")
}

// deviceAt returns the device at offset in the global list, or nil when the
// list has become shorter.
func (b *Bot) deviceAt(req *request, offset int) (*models.Device, error) {
	p, err := b.panel.ListDevices(req.ctx, offset, 1)
	if err != nil {
		return nil, errors.Wrap(err, "list devices")
	}
	if len(p.Devices) == 0 {
		return nil, nil
	}
	return &p.Devices[0], nil
}

func (b *Bot) onDevice(req *request, cb view.Callback) error {
	offset, err := strconv.Atoi(cb.Arg(0))
	if err != nil || offset < 0 {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	d, err := b.deviceAt(req, offset)
	if err != nil {
		return err
	}
	if d == nil {
		b.alert(req, view.ExpiredAlert)
		return b.showDevicesPage(req, offset/view.DevicesPageSize, "")
	}

	var owner *models.User
	if d.UserUUID != "" {
		owner, err = b.panel.GetUser(req.ctx, d.UserUUID)
		if err != nil && !panel.IsNotFound(err) {
			return errors.Wrap(err, "get user")
		}
	}
	b.show(req, view.DeviceDetail(d, owner, offset))
	return nil
}

// onDeviceDrop removes the device shown on the detail screen. The payload
// carries a fingerprint of its HWID; if the list has shifted since, nothing
// is removed.
func (b *Bot) onDeviceDrop(req *request, cb view.Callback) error {
	offset, err := strconv.Atoi(cb.Arg(0))
	if err != nil || offset < 0 {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	page := offset / view.DevicesPageSize
	d, err := b.deviceAt(req, offset)
	if err != nil {
		return err
	}
	if d == nil || view.DeviceFingerprint(d.HWID) != cb.Arg(1) {
		b.alert(req, view.ExpiredAlert)
		return b.showDevicesPage(req, page, "")
	}

	if err := b.panel.DeleteUserDevice(req.ctx, d.UserUUID, d.HWID); err != nil {
		return errors.Wrap(err, "delete device")
	}
	b.logger.Info("Device removed", zap.String("user_uuid", d.UserUUID), zap.String("hwid", d.HWID))
	return b.showDevicesPage(req, page, "✅ Device removed.")
}
