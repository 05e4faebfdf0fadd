package view

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// UsersPageSize is the number of users per list page
const UsersPageSize = 10

// ExtendPresets are the day counts offered for extending a subscription
var ExtendPresets = []int{7, 14, 30, 60, 90, 180, 365}

func userLine(u models.User) string {
	return fmt.Sprintf("%s %s", StatusEmoji(u.Status), orPlaceholder(u.Username))
}

// UsersList renders one page of users. page is zero-based.
func UsersList(p *models.UserPage, page int) Screen {
	var sb strings.Builder
	total := 0
	if p != nil {
		total = p.Total
	}
	pages := (total + UsersPageSize - 1) / UsersPageSize
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(&sb, "👥 <b>Users</b> (%d)\nPage %d/%d", total, page+1, pages)

	var buttons []tgbotapi.InlineKeyboardButton
	if p == nil || len(p.Users) == 0 {
		sb.WriteString("\n\nNo users yet.")
	} else {
		for _, u := range p.Users {
			label := fmt.Sprintf("%s %s | %s", StatusEmoji(u.Status), u.Username, FormatBytes(u.UsedTrafficBytes, false))
			buttons = append(buttons, btn(label, Data(ActUser, u.UUID)))
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, btn("⬅️", Data(ActUsersPage, strconv.Itoa(page-1))))
	}
	if page+1 < pages {
		nav = append(nav, btn("➡️", Data(ActUsersPage, strconv.Itoa(page+1))))
	}

	rows := grid(1, buttons)
	rows = append(rows,
		nav,
		row(btn("➕ Create user", Data(ActCreate, "user")), btn("📦 Bulk create", ActBulkStart)),
		row(btn("🔍 Find user", Data(ActSearch, SectionUsers))),
		row(backButton(SectionMain)),
	)
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

// UserSummary is the identifying block used in confirmations
func UserSummary(u *models.User) string {
	return fmt.Sprintf("👤 <b>%s</b>\n├ Status: %s %s\n├ Traffic: %s / %s\n└ Expires: %s",
		orPlaceholder(u.Username),
		StatusEmoji(u.Status), orPlaceholder(u.Status),
		FormatBytes(u.UsedTrafficBytes, false), FormatBytes(u.TrafficLimitBytes, true),
		FormatDate(u.ExpireAt))
}

func userText(u *models.User, devices int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n\n", orPlaceholder(u.Username))
	fmt.Fprintf(&sb, "<b>Status:</b> %s %s\n", StatusEmoji(u.Status), orPlaceholder(u.Status))
	fmt.Fprintf(&sb, "<b>UUID:</b> <code>%s</code>\n", orPlaceholder(u.UUID))
	fmt.Fprintf(&sb, "<b>Short UUID:</b> <code>%s</code>\n", orPlaceholder(u.ShortUUID))

	sb.WriteString("\n📊 <b>Traffic:</b>\n")
	fmt.Fprintf(&sb, "├ Used: %s\n", FormatBytes(u.UsedTrafficBytes, false))
	fmt.Fprintf(&sb, "├ Limit: %s\n", FormatBytes(u.TrafficLimitBytes, true))
	if u.TrafficLimitBytes > 0 {
		pct := float64(u.UsedTrafficBytes) / float64(u.TrafficLimitBytes) * 100
		fmt.Fprintf(&sb, "├ %s %.0f%%\n", ProgressBar(pct), pct)
	}
	fmt.Fprintf(&sb, "└ Reset: %s\n", orPlaceholder(u.TrafficLimitStrategy))

	sb.WriteString("\n📅 <b>Dates:</b>\n")
	fmt.Fprintf(&sb, "├ Created: %s\n", FormatDate(u.CreatedAt))
	fmt.Fprintf(&sb, "├ Expires: %s\n", FormatDate(u.ExpireAt))
	fmt.Fprintf(&sb, "└ Last online: %s\n", FormatDate(u.OnlineAt))

	if devices >= 0 {
		fmt.Fprintf(&sb, "\n💻 <b>Devices (HWID):</b> %d\n", devices)
	}

	sb.WriteString("\n📝 <b>Details:</b>\n")
	fmt.Fprintf(&sb, "├ Email: %s\n", str(u.Email))
	tg := Placeholder
	if u.TelegramID != nil {
		tg = strconv.FormatInt(*u.TelegramID, 10)
	}
	fmt.Fprintf(&sb, "├ Telegram ID: %s\n", tg)
	fmt.Fprintf(&sb, "└ Description: %s", str(u.Description))

	if u.SubscriptionURL != "" {
		fmt.Fprintf(&sb, "\n\n🔗 <b>Subscription:</b>\n<code>%s</code>", esc(u.SubscriptionURL))
	}
	return sb.String()
}

// UserDetail renders a user with its actions. devices < 0 hides the device
// count.
func UserDetail(u *models.User, devices int) Screen {
	toggle := btn("🚫 Disable", Data(ActUserDisable, u.UUID))
	if u.Status == models.UserStatusDisabled {
		toggle = btn("✅ Enable", Data(ActUserEnable, u.UUID))
	}

	var extend []tgbotapi.InlineKeyboardButton
	for _, d := range ExtendPresets[:4] {
		extend = append(extend, btn(fmt.Sprintf("+%dd", d), Data(ActUserExtend, u.UUID, strconv.Itoa(d))))
	}

	return Screen{
		Text: userText(u, devices),
		Keyboard: keyboard(
			row(btn("✏️ Edit", Data(ActEdit, u.UUID, "user")), toggle),
			extend,
			row(btn("📱 Devices", Data(ActUserDevices, u.UUID)), btn("🔄 Reset traffic", Data(ActUserReset, u.UUID))),
			row(btn("🗑 Delete", Data(ActDelete, u.UUID, "user"))),
			row(backButton(SectionUsers)),
		),
	}
}

// UserDevices lists the hardware ids registered for a user
func UserDevices(u *models.User, devices []models.Device) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📱 <b>Devices of %s</b>\n\n", orPlaceholder(u.Username))
	if len(devices) == 0 {
		sb.WriteString("No devices registered.")
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for i, d := range devices {
		fmt.Fprintf(&sb, "%d. <code>%s</code>\n├ Platform: %s %s\n├ Model: %s\n└ Added: %s\n\n",
			i+1, esc(d.HWID), str(d.Platform), str(d.OSVersion), str(d.DeviceModel), FormatDate(d.CreatedAt))
		buttons = append(buttons, btn(fmt.Sprintf("🗑 #%d", i+1), Data(ActDeviceDelete, u.UUID, strconv.Itoa(i))))
	}

	rows := grid(4, buttons)
	if len(devices) > 0 {
		rows = append(rows, row(btn("🧹 Remove all", Data(ActDevicesClear, u.UUID))))
	}
	rows = append(rows, row(btn("◀️ Back to user", Data(ActUser, u.UUID))))
	return Screen{Text: strings.TrimSpace(sb.String()), Keyboard: keyboard(rows...)}
}

// DevicesClearConfirm asks before removing every device of a user
func DevicesClearConfirm(u *models.User, count int) Screen {
	return Screen{
		Text: fmt.Sprintf("⚠️ Remove all %d devices of <b>%s</b>?", count, orPlaceholder(u.Username)),
		Keyboard: keyboard(
			row(btn(fmt.Sprintf("✅ Yes, remove (%d)", count), Data(ActDevicesClearOK, u.UUID))),
			row(btn("❌ No", Data(ActUserDevices, u.UUID))),
		),
	}
}

// Notice prefixes a screen with a one-line status message
func Notice(s Screen, line string) Screen {
	s.Text = line + "\n\n" + s.Text
	return s
}
