package view

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
)

const (
	reportNameLimit    = 20
	reportFailureLimit = 5
	echoLimit          = 64
)

var resourceTitles = map[flow.Resource]string{
	flow.ResourceUser:  "user",
	flow.ResourceHost:  "host",
	flow.ResourceNode:  "node",
	flow.ResourceSquad: "squad",
}

func hintLine(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n\n⚠️ " + esc(hint)
}

func collected(values []flow.Value) string {
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "✔️ %s: <b>%s</b>\n", esc(v.Label), esc(strings.TrimSpace(v.Raw)))
	}
	return sb.String()
}

// CreatePrompt renders the current text step of a creation wizard
func CreatePrompt(f *flow.CreateFlow, hint string) Screen {
	in, _ := f.Current()
	var sb strings.Builder
	fmt.Fprintf(&sb, "➕ <b>New %s</b> (step %d/%d)\n\n", resourceTitles[f.Resource], len(f.Fields)+1, len(f.Inputs()))
	sb.WriteString(collected(f.Fields))
	if len(f.Fields) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(esc(in.Prompt))
	sb.WriteString(hintLine(hint))
	return Screen{Text: sb.String(), Keyboard: keyboard(row(cancelButton()))}
}

// CreateInbounds offers the inbounds a new host or node can attach to
func CreateInbounds(f *flow.CreateFlow, hint string) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "➕ <b>New %s</b>\n\n", resourceTitles[f.Resource])
	sb.WriteString(collected(f.Fields))
	if len(f.Inbounds) == 0 {
		sb.WriteString("\nNo inbounds are configured on the panel, nothing to attach to.")
		return Screen{Text: sb.String(), Keyboard: keyboard(row(cancelButton()))}
	}
	sb.WriteString("\nSelect an inbound:")
	sb.WriteString(hintLine(hint))

	var buttons []tgbotapi.InlineKeyboardButton
	for i, in := range f.Inbounds {
		label := in.Tag
		if in.Type != "" {
			label = fmt.Sprintf("%s (%s)", in.Tag, in.Type)
		}
		buttons = append(buttons, btn(label, Data(ActCreateInbound, strconv.Itoa(i))))
	}
	rows := grid(1, buttons)
	rows = append(rows, row(cancelButton()))
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

// CreateConfirm summarizes a user wizard before the create call
func CreateConfirm(f *flow.CreateFlow) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "➕ <b>New %s</b>\n\n", resourceTitles[f.Resource])
	sb.WriteString(collected(f.Fields))
	sb.WriteString("\nCreate it?")
	return Screen{
		Text:     sb.String(),
		Keyboard: keyboard(row(btn("✅ Create", ActCreateConfirm), cancelButton())),
	}
}

// HostEditValues returns the current display value of every host field
func HostEditValues(h *models.Host) map[string]string {
	return map[string]string{
		"remark":       h.Remark,
		"address":      h.Address,
		"port":         strconv.Itoa(h.Port),
		"sni":          deref(h.SNI),
		"host":         deref(h.Host),
		"path":         deref(h.Path),
		"security":     h.SecurityLayer,
		"disabled":     yesNo(h.IsDisabled),
		"override_sni": yesNo(h.OverrideSNIFromAddress),
		"alpn":         deref(h.ALPN),
		"fingerprint":  deref(h.Fingerprint),
	}
}

// NodeEditValues returns the current display value of every node field
func NodeEditValues(n *models.Node) map[string]string {
	traffic := ""
	if n.TrafficLimitBytes != nil {
		traffic = FormatBytes(*n.TrafficLimitBytes, true)
	}
	return map[string]string{
		"name":      n.Name,
		"address":   n.Address,
		"port":      derefInt(n.Port),
		"country":   n.CountryCode,
		"traffic":   traffic,
		"notify":    derefInt(n.NotifyPercent),
		"reset_day": derefInt(n.TrafficResetDay),
	}
}

// UserEditValues returns the current display value of every user field
func UserEditValues(u *models.User) map[string]string {
	tg := ""
	if u.TelegramID != nil {
		tg = strconv.FormatInt(*u.TelegramID, 10)
	}
	return map[string]string{
		"traffic":     FormatBytes(u.TrafficLimitBytes, true),
		"expire":      FormatDate(u.ExpireAt),
		"email":       deref(u.Email),
		"telegram":    tg,
		"description": deref(u.Description),
		"status":      u.Status,
		"strategy":    u.TrafficLimitStrategy,
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// EditMenu renders the field list of an edit flow with current values
func EditMenu(r flow.Resource, title string, values map[string]string, notice string) Screen {
	var sb strings.Builder
	if notice != "" {
		sb.WriteString(notice + "\n\n")
	}
	fmt.Fprintf(&sb, "✏️ <b>Editing %s %s</b>\n\n", resourceTitles[r], esc(title))
	var buttons []tgbotapi.InlineKeyboardButton
	for _, f := range flow.EditFields(r) {
		v := values[f.Key]
		if v == "" {
			v = Placeholder
		}
		fmt.Fprintf(&sb, "• %s: <b>%s</b>\n", esc(f.Label), esc(v))
		buttons = append(buttons, btn(fmt.Sprintf("%s: %s", f.Label, shorten(v, 20)), Data(ActEditField, f.Key)))
	}
	sb.WriteString("\nChoose a field to change:")
	rows := grid(2, buttons)
	rows = append(rows, row(btn("✅ Done", ActEditDone)))
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

// EditPrompt asks for a new free-text value
func EditPrompt(field flow.EditField, current, hint string) Screen {
	if current == "" {
		current = Placeholder
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "✏️ <b>%s</b>\n\nCurrent value: <b>%s</b>\n\nSend the new value", esc(field.Label), esc(current))
	if field.Hint != "" {
		fmt.Fprintf(&sb, " (%s)", esc(field.Hint))
	}
	sb.WriteString(".")
	if field.Clearable {
		fmt.Fprintf(&sb, "\nSend <code>%s</code> to clear it.", flow.ClearValue)
	}
	sb.WriteString(hintLine(hint))
	return Screen{Text: sb.String(), Keyboard: keyboard(row(btn("◀️ Back", ActEditBack)))}
}

// EditChoices offers the values of a bool or enum field as buttons
func EditChoices(field flow.EditField, current string) Screen {
	if current == "" {
		current = Placeholder
	}
	text := fmt.Sprintf("✏️ <b>%s</b>\n\nCurrent value: <b>%s</b>\n\nChoose a new value:", esc(field.Label), esc(current))

	var buttons []tgbotapi.InlineKeyboardButton
	switch field.Kind {
	case flow.FieldBool:
		buttons = append(buttons,
			btn("Yes", Data(ActEditValue, field.Key, "1")),
			btn("No", Data(ActEditValue, field.Key, "0")),
		)
	case flow.FieldEnum:
		for _, opt := range field.Options {
			buttons = append(buttons, btn(opt, Data(ActEditValue, field.Key, opt)))
		}
		if field.Clearable {
			buttons = append(buttons, btn("🧹 Clear", Data(ActEditValue, field.Key, flow.ClearValue)))
		}
	}
	rows := grid(2, buttons)
	rows = append(rows, row(btn("◀️ Back", ActEditBack)))
	return Screen{Text: text, Keyboard: keyboard(rows...)}
}

// DeleteChallenge shows the resource and the code to retype. got is the
// rejected attempt, if any.
func DeleteChallenge(f *flow.DeleteFlow, got *string) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗑 <b>Delete %s?</b>\n\n", resourceTitles[f.Resource])
	sb.WriteString(f.Details)
	fmt.Fprintf(&sb, "\n\n⚠️ This cannot be undone. To confirm, send this code:\n<code>%s</code>", f.Code)
	if got != nil {
		fmt.Fprintf(&sb, "\n\n❌ Code mismatch: expected <code>%s</code>, got <code>%s</code>. Try again.",
			f.Code, esc(shorten(*got, echoLimit)))
	}
	return Screen{
		Text:     sb.String(),
		Keyboard: keyboard(row(btn("❌ Cancel", Data(ActDeleteCancel, f.TargetID, string(f.Resource))))),
	}
}

// Deleted confirms a completed delete using the captured label
func Deleted(f *flow.DeleteFlow) Screen {
	section := map[flow.Resource]string{
		flow.ResourceUser:  SectionUsers,
		flow.ResourceHost:  SectionHosts,
		flow.ResourceNode:  SectionNodes,
		flow.ResourceSquad: SectionSquads,
	}[f.Resource]
	return Screen{
		Text:     fmt.Sprintf("✅ Deleted %s <b>%s</b>.", resourceTitles[f.Resource], esc(f.Label)),
		Keyboard: keyboard(row(backButton(section)), row(backButton(SectionMain))),
	}
}

func durationLabel(months int) string {
	if months == 0 {
		return "♾ Unlimited"
	}
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}

func trafficLabel(gb int) string {
	if gb == 0 {
		return "♾ Unlimited"
	}
	if gb >= 1000 && gb%1000 == 0 {
		return fmt.Sprintf("%d TB", gb/1000)
	}
	return fmt.Sprintf("%d GB", gb)
}

var resetLabels = map[string]string{
	models.ResetNoReset: "No reset",
	models.ResetDay:     "Daily",
	models.ResetWeek:    "Weekly",
	models.ResetMonth:   "Monthly",
}

func bulkSummary(f *flow.BulkFlow) string {
	var sb strings.Builder
	if f.Count > 0 {
		fmt.Fprintf(&sb, "├ Count: <b>%d</b>\n", f.Count)
	}
	if f.Step > flow.BulkDuration {
		fmt.Fprintf(&sb, "├ Duration: <b>%s</b>\n", durationLabel(f.DurationMonths))
	}
	if f.Step > flow.BulkTraffic {
		fmt.Fprintf(&sb, "├ Traffic: <b>%s</b>\n", trafficLabel(f.TrafficGB))
	}
	if f.Step > flow.BulkReset && f.TrafficGB > 0 {
		fmt.Fprintf(&sb, "├ Reset: <b>%s</b>\n", resetLabels[f.Reset])
	}
	return sb.String()
}

// Bulk renders the current step of the bulk creation wizard
func Bulk(f *flow.BulkFlow, hint string) Screen {
	var sb strings.Builder
	sb.WriteString("📦 <b>Bulk user creation</b>\n\n")
	sb.WriteString(bulkSummary(f))

	var buttons []tgbotapi.InlineKeyboardButton
	cols := 3
	switch f.Step {
	case flow.BulkCount:
		sb.WriteString("\nHow many users?")
		for _, n := range flow.CountChoices(f.Max) {
			buttons = append(buttons, btn(strconv.Itoa(n), Data(ActBulkCount, strconv.Itoa(n))))
		}
	case flow.BulkDuration:
		sb.WriteString("\nSubscription length:")
		for _, m := range flow.DurationChoices {
			buttons = append(buttons, btn(durationLabel(m), Data(ActBulkDuration, strconv.Itoa(m))))
		}
	case flow.BulkTraffic:
		sb.WriteString("\nTraffic limit:")
		for _, gb := range flow.TrafficChoices {
			buttons = append(buttons, btn(trafficLabel(gb), Data(ActBulkTraffic, strconv.Itoa(gb))))
		}
	case flow.BulkReset:
		sb.WriteString("\nTraffic reset:")
		cols = 2
		for _, s := range flow.ResetChoices {
			buttons = append(buttons, btn(resetLabels[s], Data(ActBulkReset, s)))
		}
	case flow.BulkConfirm:
		sb.WriteString("\nCreate these users?")
		buttons = append(buttons, btn("✅ Create", ActBulkConfirm))
		cols = 1
	case flow.BulkRunning:
		fmt.Fprintf(&sb, "\n⏳ Creating %d users…", f.Count)
		return Screen{Text: sb.String()}
	}
	sb.WriteString(hintLine(hint))

	rows := grid(cols, buttons)
	rows = append(rows, row(cancelButton()))
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

func reportBody(sb *strings.Builder, report flow.Report) {
	if len(report.Succeeded) > 0 {
		sb.WriteString("\n<b>Created:</b>\n")
		for i, name := range report.Succeeded {
			if i == reportNameLimit {
				fmt.Fprintf(sb, "... and %d more\n", len(report.Succeeded)-reportNameLimit)
				break
			}
			fmt.Fprintf(sb, "<code>%s</code>\n", esc(name))
		}
	}
	failures(sb, report)
}

// failures lists failed items only when there are few of them
func failures(sb *strings.Builder, report flow.Report) {
	if len(report.Failed) == 0 || len(report.Failed) > reportFailureLimit {
		return
	}
	sb.WriteString("\n<b>Failed:</b>\n")
	for _, f := range report.Failed {
		fmt.Fprintf(sb, "• %s: %s\n", esc(f.Item), esc(f.Reason))
	}
}

// BulkReport summarizes a finished bulk creation
func BulkReport(report flow.Report) Screen {
	var sb strings.Builder
	icon := "✅"
	if len(report.Failed) > 0 {
		icon = "⚠️"
	}
	fmt.Fprintf(&sb, "%s <b>Bulk creation finished</b>\n\n├ Total: %d\n├ Created: %d\n└ Failed: %d\n",
		icon, report.Total(), len(report.Succeeded), len(report.Failed))
	reportBody(&sb, report)
	return Screen{
		Text:     strings.TrimSpace(sb.String()),
		Keyboard: keyboard(row(backButton(SectionUsers)), row(backButton(SectionMain))),
	}
}

// SearchPrompt asks for a query. notFound is the previous query that
// matched nothing.
func SearchPrompt(notFound string) Screen {
	text := "🔍 <b>Find user</b>\n\nSend a username, email, Telegram ID, short UUID or UUID."
	if notFound != "" {
		text += fmt.Sprintf("\n\n❌ Nothing found for <b>%s</b>. Try another query.", esc(shorten(notFound, echoLimit)))
	}
	return Screen{Text: text, Keyboard: keyboard(row(cancelButton()))}
}

// SearchResults lists several matches for disambiguation
func SearchResults(query string, users []models.User) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 <b>Results for %s</b> (%d)\n", esc(shorten(query, echoLimit)), len(users))
	var buttons []tgbotapi.InlineKeyboardButton
	for _, u := range users {
		fmt.Fprintf(&sb, "\n%s", userLine(u))
		buttons = append(buttons, btn(fmt.Sprintf("%s %s", StatusEmoji(u.Status), u.Username), Data(ActUser, u.UUID)))
	}
	rows := grid(1, buttons)
	rows = append(rows,
		row(btn("🔍 New search", Data(ActSearch, SectionUsers))),
		row(backButton(SectionMain)),
	)
	return Screen{Text: sb.String(), Keyboard: keyboard(rows...)}
}

// MassMenu lists operations applied to every user
func MassMenu() Screen {
	return Screen{
		Text: "⚙️ <b>Mass operations</b>\n\nThese actions apply to every user on the panel.",
		Keyboard: keyboard(
			row(btn("✅ Enable all", Data(ActMass, MassEnable))),
			row(btn("🚫 Disable all", Data(ActMass, MassDisable))),
			row(btn("⏰ Extend all", Data(ActMass, MassExtend))),
			row(btn("🔄 Reset traffic for all", Data(ActMass, MassReset))),
			row(backButton(SectionMain)),
		),
	}
}

// MassExtendDays offers the day presets for a mass extension
func MassExtendDays() Screen {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, d := range ExtendPresets {
		buttons = append(buttons, btn(fmt.Sprintf("%d days", d), Data(ActMass, MassExtend, strconv.Itoa(d))))
	}
	rows := grid(2, buttons)
	rows = append(rows, row(btn("◀️ Back", Data(ActMass, MassHome))))
	return Screen{Text: "⏰ <b>Extend all users</b>\n\nBy how many days?", Keyboard: keyboard(rows...)}
}

func massTitle(op string, days int) string {
	switch op {
	case MassEnable:
		return "Enable all users"
	case MassDisable:
		return "Disable all users"
	case MassExtend:
		return fmt.Sprintf("Extend all users by %d days", days)
	case MassReset:
		return "Reset traffic for all users"
	default:
		return op
	}
}

// MassConfirm asks before running a mass operation
func MassConfirm(op string, days int) Screen {
	args := []string{op}
	if op == MassExtend {
		args = append(args, strconv.Itoa(days))
	}
	return Screen{
		Text: fmt.Sprintf("⚠️ <b>%s</b>?\n\nEvery user on the panel will be affected.", massTitle(op, days)),
		Keyboard: keyboard(
			row(btn("✅ Yes, run it", Data(ActMassOK, args...))),
			row(btn("❌ No", Data(ActMass, MassHome))),
		),
	}
}

// MassReport summarizes a finished mass operation
func MassReport(op string, days int, report flow.Report) Screen {
	icon := "✅"
	if len(report.Failed) > 0 {
		icon = "⚠️"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n\n├ Total: %d\n├ Succeeded: %d\n└ Failed: %d\n",
		icon, massTitle(op, days), report.Total(), len(report.Succeeded), len(report.Failed))
	failures(&sb, report)
	return Screen{
		Text:     strings.TrimSpace(sb.String()),
		Keyboard: keyboard(row(btn("◀️ Mass operations", Data(ActMass, MassHome))), row(backButton(SectionMain))),
	}
}
