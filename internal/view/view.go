// Package view renders panel resources and wizard states into message text
// and inline keyboards. Renderers never fail on missing fields.
package view

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// Screen is one rendered message. Keyboard may be nil.
type Screen struct {
	Text     string
	Keyboard *tgbotapi.InlineKeyboardMarkup
}

// Texts shown outside of screens
const (
	DeniedText    = "⛔ You are not authorized to use this bot."
	DeniedAlert   = "Access denied"
	ExpiredAlert  = "This action has expired, open the menu again."
	UnknownAlert  = "Unknown action"
	InternalError = "❌ Something went wrong. The current action was cancelled, please start again."
)

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return buttons
}

func keyboard(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	var nonEmpty [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		if len(r) > 0 {
			nonEmpty = append(nonEmpty, r)
		}
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(nonEmpty...)
	return &kb
}

// grid lays buttons out cols per row
func grid(cols int, buttons []tgbotapi.InlineKeyboardButton) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += cols {
		end := i + cols
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

func backButton(section string) tgbotapi.InlineKeyboardButton {
	if section == SectionMain {
		return btn("◀️ Main menu", Data(ActMenu, SectionMain))
	}
	return btn("◀️ Back", Data(ActMenu, section))
}

func cancelButton() tgbotapi.InlineKeyboardButton {
	return btn("❌ Cancel", ActCancel)
}

// MainMenu is the entry screen
func MainMenu() Screen {
	return Screen{
		Text: "🛡 <b>Remnawave admin</b>\n\nChoose a section:",
		Keyboard: keyboard(
			row(btn("👥 Users", Data(ActMenu, SectionUsers)), btn("🌐 Hosts", Data(ActMenu, SectionHosts))),
			row(btn("🖥 Nodes", Data(ActMenu, SectionNodes)), btn("👪 Squads", Data(ActMenu, SectionSquads))),
			row(btn("📱 Devices", Data(ActMenu, SectionDevices)), btn("📊 System stats", Data(ActMenu, SectionStats))),
			row(btn("📦 Bulk create", Data(ActMenu, SectionBulk))),
			row(btn("🔍 Find user", Data(ActSearch, SectionUsers)), btn("⚙️ Mass operations", Data(ActMass, MassHome))),
		),
	}
}

// Cancelled is shown after /cancel or the cancel button
func Cancelled(hadFlow bool) Screen {
	text := "Nothing to cancel."
	if hadFlow {
		text = "❌ Cancelled."
	}
	return Screen{Text: text, Keyboard: keyboard(row(backButton(SectionMain)))}
}

// Error renders a failed panel call with the panel's message
func Error(message string) Screen {
	return Screen{
		Text:     "❌ <b>Panel error</b>\n\n" + esc(message),
		Keyboard: keyboard(row(backButton(SectionMain))),
	}
}

// Internal is the generic notice for unexpected failures
func Internal() Screen {
	return Screen{Text: InternalError, Keyboard: keyboard(row(backButton(SectionMain)))}
}

// Stats renders the system statistics view
func Stats(s *models.SystemStats) Screen {
	var sb strings.Builder
	sb.WriteString("📊 <b>System statistics</b>\n\n")
	if s == nil {
		sb.WriteString(Placeholder)
	} else {
		fmt.Fprintf(&sb, "🖥 <b>Server:</b>\n├ CPU cores: %d\n├ Memory: %s / %s\n└ Uptime: %s\n\n",
			s.CPUCores, FormatBytes(s.MemoryUsed, false), FormatBytes(s.MemoryTotal, false), FormatDuration(s.UptimeSeconds))
		fmt.Fprintf(&sb, "👥 <b>Users:</b> %d\n", s.TotalUsers)
		for i, status := range []string{models.UserStatusActive, models.UserStatusDisabled, models.UserStatusLimited, models.UserStatusExpired} {
			branch := "├"
			if i == 3 {
				branch = "└"
			}
			fmt.Fprintf(&sb, "%s %s %s: %d\n", branch, StatusEmoji(status), status, s.StatusCounts[status])
		}
		fmt.Fprintf(&sb, "\n🟢 Online now: %d\n📡 Nodes online: %d\n📈 Total traffic: %s",
			s.OnlineNow, s.NodesOnline, FormatBytes(s.TotalTraffic, false))
	}
	return Screen{
		Text: sb.String(),
		Keyboard: keyboard(
			row(btn("🔄 Refresh", Data(ActMenu, SectionStats))),
			row(backButton(SectionMain)),
		),
	}
}

// ProgressBar renders percent as a 10-cell bar
func ProgressBar(percent float64) string {
	const width = 10
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
