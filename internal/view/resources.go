package view

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DigneZzZ/remnabot/internal/models"
)

func disabledEmoji(disabled bool) string {
	if disabled {
		return "🚫"
	}
	return "✅"
}

// HostsList renders every host as a button
func HostsList(hosts []models.Host) Screen {
	text := fmt.Sprintf("🌐 <b>Hosts</b> (%d)", len(hosts))
	if len(hosts) == 0 {
		text += "\n\nNo hosts yet."
	}
	var buttons []tgbotapi.InlineKeyboardButton
	for _, h := range hosts {
		label := fmt.Sprintf("%s %s (%s:%d)", disabledEmoji(h.IsDisabled), h.Remark, h.Address, h.Port)
		buttons = append(buttons, btn(label, Data(ActHost, h.UUID)))
	}
	rows := grid(1, buttons)
	rows = append(rows,
		row(btn("➕ Create host", Data(ActCreate, "host"))),
		row(backButton(SectionMain)),
	)
	return Screen{Text: text, Keyboard: keyboard(rows...)}
}

// HostSummary is the identifying block used in confirmations
func HostSummary(h *models.Host) string {
	return fmt.Sprintf("🌐 <b>%s</b>\n├ Address: %s:%d\n└ Status: %s",
		orPlaceholder(h.Remark), orPlaceholder(h.Address), h.Port, hostStatus(h.IsDisabled))
}

func hostStatus(disabled bool) string {
	if disabled {
		return "🚫 disabled"
	}
	return "✅ enabled"
}

func hostText(h *models.Host) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌐 <b>%s</b>\n\n", orPlaceholder(h.Remark))
	fmt.Fprintf(&sb, "<b>Status:</b> %s\n", hostStatus(h.IsDisabled))
	fmt.Fprintf(&sb, "<b>UUID:</b> <code>%s</code>\n\n", orPlaceholder(h.UUID))
	sb.WriteString("🔌 <b>Connection:</b>\n")
	fmt.Fprintf(&sb, "├ Address: %s\n", orPlaceholder(h.Address))
	fmt.Fprintf(&sb, "├ Port: %d\n", h.Port)
	fmt.Fprintf(&sb, "├ Path: %s\n", str(h.Path))
	fmt.Fprintf(&sb, "└ Host header: %s\n\n", str(h.Host))
	sb.WriteString("🔐 <b>Security:</b>\n")
	fmt.Fprintf(&sb, "├ Layer: %s\n", orPlaceholder(h.SecurityLayer))
	fmt.Fprintf(&sb, "├ SNI: %s\n", str(h.SNI))
	fmt.Fprintf(&sb, "├ Override SNI: %s\n", yesNo(h.OverrideSNIFromAddress))
	fmt.Fprintf(&sb, "├ ALPN: %s\n", str(h.ALPN))
	fmt.Fprintf(&sb, "└ Fingerprint: %s", str(h.Fingerprint))
	if h.Inbound != nil {
		fmt.Fprintf(&sb, "\n\n📥 <b>Inbound:</b> <code>%s</code>", orPlaceholder(h.Inbound.ConfigProfileInboundUUID))
	}
	return sb.String()
}

// HostDetail renders a host with its actions
func HostDetail(h *models.Host) Screen {
	toggle := "🚫 Disable"
	if h.IsDisabled {
		toggle = "✅ Enable"
	}
	return Screen{
		Text: hostText(h),
		Keyboard: keyboard(
			row(btn("✏️ Edit", Data(ActEdit, h.UUID, "host")), btn(toggle, Data(ActHostToggle, h.UUID))),
			row(btn("🗑 Delete", Data(ActDelete, h.UUID, "host"))),
			row(backButton(SectionHosts)),
		),
	}
}

// NodesList renders every node as a button
func NodesList(nodes []models.Node) Screen {
	text := fmt.Sprintf("🖥 <b>Nodes</b> (%d)", len(nodes))
	if len(nodes) == 0 {
		text += "\n\nNo nodes yet."
	}
	var buttons []tgbotapi.InlineKeyboardButton
	for _, n := range nodes {
		icon := onlineEmoji(n.IsConnected && !n.IsDisabled)
		if n.IsDisabled {
			icon = "🚫"
		}
		buttons = append(buttons, btn(fmt.Sprintf("%s %s (%s)", icon, n.Name, n.Address), Data(ActNode, n.UUID)))
	}
	rows := grid(1, buttons)
	rows = append(rows,
		row(btn("➕ Create node", Data(ActCreate, "node"))),
		row(backButton(SectionMain)),
	)
	return Screen{Text: text, Keyboard: keyboard(rows...)}
}

// NodeSummary is the identifying block used in confirmations
func NodeSummary(n *models.Node) string {
	return fmt.Sprintf("🖥 <b>%s</b>\n├ Address: %s\n└ Country: %s",
		orPlaceholder(n.Name), orPlaceholder(n.Address), orPlaceholder(n.CountryCode))
}

func nodeText(n *models.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🖥 <b>%s</b>\n\n", orPlaceholder(n.Name))
	status := "🔴 offline"
	switch {
	case n.IsDisabled:
		status = "🚫 disabled"
	case n.IsConnected:
		status = "🟢 connected"
	}
	fmt.Fprintf(&sb, "<b>Status:</b> %s\n", status)
	fmt.Fprintf(&sb, "<b>UUID:</b> <code>%s</code>\n\n", orPlaceholder(n.UUID))
	sb.WriteString("🔌 <b>Connection:</b>\n")
	fmt.Fprintf(&sb, "├ Address: %s\n", orPlaceholder(n.Address))
	fmt.Fprintf(&sb, "├ Port: %s\n", intPtr(n.Port))
	fmt.Fprintf(&sb, "├ Country: %s\n", orPlaceholder(n.CountryCode))
	fmt.Fprintf(&sb, "└ Xray: %s\n\n", str(n.XrayVersion))

	sb.WriteString("📊 <b>Traffic:</b>\n")
	used := Placeholder
	if n.TrafficUsedBytes != nil {
		used = FormatBytes(*n.TrafficUsedBytes, false)
	}
	limit := Placeholder
	if n.TrafficLimitBytes != nil {
		limit = FormatBytes(*n.TrafficLimitBytes, true)
	}
	fmt.Fprintf(&sb, "├ Used: %s\n", used)
	fmt.Fprintf(&sb, "├ Limit: %s\n", limit)
	fmt.Fprintf(&sb, "├ Notify at: %s%%\n", intPtr(n.NotifyPercent))
	fmt.Fprintf(&sb, "└ Reset day: %s\n\n", intPtr(n.TrafficResetDay))
	fmt.Fprintf(&sb, "👥 <b>Users online:</b> %s", intPtr(n.UsersOnline))

	if n.ConfigProfile != nil && len(n.ConfigProfile.ActiveInbounds) > 0 {
		tags := make([]string, 0, len(n.ConfigProfile.ActiveInbounds))
		for _, in := range n.ConfigProfile.ActiveInbounds {
			tags = append(tags, esc(in.Tag))
		}
		fmt.Fprintf(&sb, "\n📥 <b>Inbounds:</b> %s", strings.Join(tags, ", "))
	}
	return sb.String()
}

// NodeDetail renders a node with its actions
func NodeDetail(n *models.Node) Screen {
	toggle := btn("🚫 Disable", Data(ActNodeDisable, n.UUID))
	if n.IsDisabled {
		toggle = btn("✅ Enable", Data(ActNodeEnable, n.UUID))
	}
	return Screen{
		Text: nodeText(n),
		Keyboard: keyboard(
			row(btn("✏️ Edit", Data(ActEdit, n.UUID, "node")), toggle),
			row(btn("🔄 Restart", Data(ActNodeRestart, n.UUID)), btn("🗑 Delete", Data(ActDelete, n.UUID, "node"))),
			row(backButton(SectionNodes)),
		),
	}
}

// SquadsList renders every squad as a button
func SquadsList(squads []models.Squad) Screen {
	text := fmt.Sprintf("👪 <b>Squads</b> (%d)", len(squads))
	if len(squads) == 0 {
		text += "\n\nNo squads yet."
	}
	var buttons []tgbotapi.InlineKeyboardButton
	for _, s := range squads {
		buttons = append(buttons, btn(fmt.Sprintf("%s (%d)", s.Name, s.Info.MembersCount), Data(ActSquad, s.UUID)))
	}
	rows := grid(1, buttons)
	rows = append(rows, row(backButton(SectionMain)))
	return Screen{Text: text, Keyboard: keyboard(rows...)}
}

// SquadSummary is the identifying block used in confirmations
func SquadSummary(s *models.Squad) string {
	return fmt.Sprintf("👪 <b>%s</b>\n├ Members: %d\n└ Inbounds: %d",
		orPlaceholder(s.Name), s.Info.MembersCount, s.Info.InboundsCount)
}

// SquadDetail renders a squad with its actions
func SquadDetail(s *models.Squad) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👪 <b>%s</b>\n\n", orPlaceholder(s.Name))
	fmt.Fprintf(&sb, "<b>UUID:</b> <code>%s</code>\n", orPlaceholder(s.UUID))
	fmt.Fprintf(&sb, "<b>Members:</b> %d\n", s.Info.MembersCount)
	fmt.Fprintf(&sb, "<b>Inbounds:</b> %d", s.Info.InboundsCount)
	for _, in := range s.Inbounds {
		fmt.Fprintf(&sb, "\n• %s", orPlaceholder(in.Tag))
	}
	return Screen{
		Text: sb.String(),
		Keyboard: keyboard(
			row(btn("🗑 Delete", Data(ActDelete, s.UUID, "squad"))),
			row(backButton(SectionSquads)),
		),
	}
}
