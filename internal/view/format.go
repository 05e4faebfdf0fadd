package view

import (
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// Placeholder is shown for missing values
const Placeholder = "—"

const dateLayout = "2006-01-02 15:04"

// FormatBytes renders a byte count with binary units. Zero or less is
// "unlimited" when unlimited is set.
func FormatBytes(n int64, unlimited bool) string {
	if n <= 0 && unlimited {
		return "∞"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 4; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTP"[exp])
}

// FormatDate renders t in UTC or the placeholder when nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format(dateLayout)
}

// FormatDuration renders seconds as days/hours/minutes
func FormatDuration(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// StatusEmoji maps a user status to its icon
func StatusEmoji(status string) string {
	switch status {
	case models.UserStatusActive:
		return "✅"
	case models.UserStatusDisabled:
		return "🚫"
	case models.UserStatusLimited:
		return "⚠️"
	case models.UserStatusExpired:
		return "⏱️"
	default:
		return "❔"
	}
}

func onlineEmoji(online bool) string {
	if online {
		return "🟢"
	}
	return "🔴"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// esc escapes text for HTML parse mode
func esc(s string) string { return html.EscapeString(s) }

func str(p *string) string {
	if p == nil || *p == "" {
		return Placeholder
	}
	return esc(*p)
}

func intPtr(p *int) string {
	if p == nil {
		return Placeholder
	}
	return strconv.Itoa(*p)
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return esc(s)
}
