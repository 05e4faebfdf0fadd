package view

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// DevicesPageSize is the number of devices per list page
const DevicesPageSize = 10

const topPlatforms = 5

// DeviceFingerprint is a short digest of a HWID. Buttons address a device by
// its list position plus this digest, since a full HWID may not fit into a
// callback payload.
func DeviceFingerprint(hwid string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(hwid))
	return fmt.Sprintf("%08x", h.Sum32())
}

func deviceLabel(d models.Device) string {
	label := "📱 " + shorten(d.HWID, 16)
	if d.Platform != nil && *d.Platform != "" {
		label += " · " + *d.Platform
	}
	return label
}

// DevicesList renders one page of devices across all users, headed by the
// panel's device counters when they are available.
func DevicesList(p *models.DevicePage, stats *models.HWIDStats, page int) Screen {
	var sb strings.Builder
	total := 0
	if p != nil {
		total = p.Total
	}
	pages := (total + DevicesPageSize - 1) / DevicesPageSize
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(&sb, "📱 <b>Devices</b> (%d)\nPage %d/%d", total, page+1, pages)

	if stats != nil {
		fmt.Fprintf(&sb, "\n\n├ Unique: %d\n└ Per user: %.1f", stats.Totals.UniqueDevices, stats.Totals.AveragePerUser)
		for i, pc := range stats.ByPlatform {
			if i == topPlatforms {
				break
			}
			fmt.Fprintf(&sb, "\n• %s: %d", orPlaceholder(pc.Platform), pc.Count)
		}
	}

	var buttons []tgbotapi.InlineKeyboardButton
	if p == nil || len(p.Devices) == 0 {
		sb.WriteString("\n\nNo devices registered.")
	} else {
		for i, d := range p.Devices {
			offset := page*DevicesPageSize + i
			buttons = append(buttons, btn(deviceLabel(d), Data(ActDevice, strconv.Itoa(offset))))
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, btn("⬅️", Data(ActDevicesPage, strconv.Itoa(page-1))))
	}
	if page+1 < pages {
		nav = append(nav, btn("➡️", Data(ActDevicesPage, strconv.Itoa(page+1))))
	}

	rows := grid(1, buttons)
	rows = append(rows, nav, row(backButton(SectionMain)))
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

// DeviceDetail shows one device found at offset in the global list. owner
// may be nil when the user could not be loaded.
func DeviceDetail(d *models.Device, owner *models.User, offset int) Screen {
	username := ""
	if owner != nil {
		username = owner.Username
	}
	text := fmt.Sprintf(
		"📱 <b>Device</b>\n\n<b>HWID:</b> <code>%s</code>\n<b>User:</b> %s\n<b>User UUID:</b> <code>%s</code>\n\n"+
			"├ Platform: %s %s\n├ Model: %s\n├ User agent: %s\n└ Added: %s",
		esc(d.HWID), orPlaceholder(username), orPlaceholder(d.UserUUID),
		str(d.Platform), str(d.OSVersion), str(d.DeviceModel), str(d.UserAgent), FormatDate(d.CreatedAt),
	)

	rows := [][]tgbotapi.InlineKeyboardButton{
		row(btn("🗑 Delete", Data(ActDeviceDrop, strconv.Itoa(offset), DeviceFingerprint(d.HWID)))),
	}
	if d.UserUUID != "" {
		rows = append(rows, row(btn("👤 Open user", Data(ActUser, d.UserUUID))))
	}
	rows = append(rows, row(btn("◀️ Back to devices", Data(ActDevicesPage, strconv.Itoa(offset/DevicesPageSize)))))
	return Screen{Text: text, Keyboard: keyboard(rows...)}
}
