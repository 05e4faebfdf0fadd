package bot

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/panel/stubs"
	"github.com/DigneZzZ/remnabot/internal/session"
	"github.com/DigneZzZ/remnabot/internal/view"
)

const (
	adminID    = int64(100)
	strangerID = int64(999)
	chatID     = int64(500)
)

// fakeSender records everything the bot sends and hands out message IDs
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	if edit, ok := c.(tgbotapi.EditMessageTextConfig); ok {
		return tgbotapi.Message{MessageID: edit.MessageID}, nil
	}
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "nothing was sent")
	switch c := s.sent[len(s.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	default:
		t.Fatalf("unexpected chattable %T", c)
		return ""
	}
}

func (s *fakeSender) alerts() []tgbotapi.CallbackConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, r := range s.requests {
		if cb, ok := r.(tgbotapi.CallbackConfig); ok && cb.ShowAlert {
			out = append(out, cb)
		}
	}
	return out
}

// sentTo counts messages sent or edited in chat
func (s *fakeSender) sentTo(chat int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.sent {
		switch c := c.(type) {
		case tgbotapi.MessageConfig:
			if c.ChatID == chat {
				n++
			}
		case tgbotapi.EditMessageTextConfig:
			if c.ChatID == chat {
				n++
			}
		}
	}
	return n
}

type harness struct {
	bot    *Bot
	sender *fakeSender
	panel  *stubs.MockPanel
	ctx    context.Context
	lastID int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sender := &fakeSender{}
	mock := stubs.NewMockPanel().Seed()
	b := newBot(sender, mock, Options{
		AdminIDs:      []int64{adminID},
		MaxBulkCreate: 20,
	}, zap.NewNop())
	return &harness{bot: b, sender: sender, panel: mock, ctx: context.Background()}
}

func (h *harness) key() session.Key { return session.Key{ChatID: chatID, UserID: adminID} }

func textUpdate(from, chat int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 9000,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: chat},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(from, chat int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chat}},
		Data:    data,
	}}
}

func (h *harness) text(from int64, text string) {
	h.bot.HandleUpdate(h.ctx, textUpdate(from, chatID, text))
}

// press taps a button on the last message the bot produced
func (h *harness) press(from int64, data string) {
	h.sender.mu.Lock()
	h.lastID = h.sender.nextID
	h.sender.mu.Unlock()
	h.bot.HandleUpdate(h.ctx, callbackUpdate(from, chatID, h.lastID, data))
}

// pressOn taps a button on a specific earlier message
func (h *harness) pressOn(messageID int, data string) {
	h.bot.HandleUpdate(h.ctx, callbackUpdate(adminID, chatID, messageID, data))
}

func (h *harness) host(t *testing.T, remark string) models.Host {
	t.Helper()
	hosts, err := h.panel.ListHosts(h.ctx)
	require.NoError(t, err)
	for _, host := range hosts {
		if host.Remark == remark {
			return host
		}
	}
	t.Fatalf("host %q not found", remark)
	return models.Host{}
}

func (h *harness) user(t *testing.T, username string) models.User {
	t.Helper()
	page, err := h.panel.ListUsers(h.ctx, 0, 100)
	require.NoError(t, err)
	for _, u := range page.Users {
		if u.Username == username {
			return u
		}
	}
	t.Fatalf("user %q not found", username)
	return models.User{}
}

func TestBot_UnauthorizedStart(t *testing.T) {
	h := newHarness(t)

	h.text(strangerID, "/start")

	assert.Contains(t, h.sender.lastText(t), "not authorized")
	assert.Equal(t, 0, h.bot.sessions.Len())
	assert.Equal(t, 0, h.panel.Calls("ListUsers"))
}

func TestBot_UnauthorizedCallback(t *testing.T) {
	h := newHarness(t)

	h.press(strangerID, "menu:users")

	alerts := h.sender.alerts()
	require.Len(t, alerts, 1)
	assert.Empty(t, h.sender.sent)
	assert.Equal(t, 0, h.panel.Calls("ListUsers"))
}

func TestBot_MainMenu(t *testing.T) {
	h := newHarness(t)

	h.text(adminID, "/start")
	assert.Contains(t, h.sender.lastText(t), "Remnawave admin")

	h.press(adminID, "menu:hosts")
	assert.Contains(t, h.sender.lastText(t), "Hosts (1)")
}

func TestBot_CreateHost(t *testing.T) {
	h := newHarness(t)
	inbounds, err := h.panel.ListInbounds(h.ctx)
	require.NoError(t, err)

	h.press(adminID, "create:host")
	_, ok := activeFlow[*flow.CreateFlow](h.bot.sessions, h.key())
	require.True(t, ok)

	h.text(adminID, "edge1")
	h.text(adminID, "10.0.0.5")

	h.text(adminID, "70000")
	assert.Contains(t, h.sender.lastText(t), "65535")

	h.text(adminID, "443")
	assert.Contains(t, h.sender.lastText(t), "Select an inbound")

	h.press(adminID, "create_inbound:0")

	reqs := h.panel.HostRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "edge1", reqs[0].Remark)
	assert.Equal(t, "10.0.0.5", reqs[0].Address)
	assert.Equal(t, 443, reqs[0].Port)
	assert.Equal(t, inbounds[0].UUID, reqs[0].Inbound.ConfigProfileInboundUUID)
	assert.Equal(t, inbounds[0].ProfileUUID, reqs[0].Inbound.ConfigProfileUUID)

	assert.Contains(t, h.sender.lastText(t), "Host created")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_DeleteHostChallenge(t *testing.T) {
	h := newHarness(t)
	germany := h.host(t, "Germany")

	h.press(adminID, "delete:"+germany.UUID+":host")
	f, ok := activeFlow[*flow.DeleteFlow](h.bot.sessions, h.key())
	require.True(t, ok)
	assert.Contains(t, h.sender.lastText(t), f.Code)

	h.text(adminID, "nope nope")
	text := h.sender.lastText(t)
	assert.Contains(t, text, "Code mismatch")
	assert.Contains(t, text, f.Code)
	assert.Contains(t, text, "nope nope")
	assert.Equal(t, 0, h.panel.Calls("DeleteHost"))

	again, ok := activeFlow[*flow.DeleteFlow](h.bot.sessions, h.key())
	require.True(t, ok)
	assert.Equal(t, f.Code, again.Code, "code must not change after a mismatch")

	h.text(adminID, " "+f.Code+" ")
	assert.Equal(t, 1, h.panel.Calls("DeleteHost"))
	assert.Contains(t, h.sender.lastText(t), "Germany")
	assert.Contains(t, h.sender.lastText(t), "Deleted")
	assert.Equal(t, 0, h.bot.sessions.Len())

	_, err := h.panel.GetHost(h.ctx, germany.UUID)
	assert.True(t, panel.IsNotFound(err))
}

func TestBot_DeleteCancel(t *testing.T) {
	h := newHarness(t)
	germany := h.host(t, "Germany")

	h.press(adminID, "delete:"+germany.UUID+":host")
	h.press(adminID, "delete_cancel:"+germany.UUID+":host")

	assert.Equal(t, 0, h.bot.sessions.Len())
	assert.Equal(t, 0, h.panel.Calls("DeleteHost"))
	assert.Contains(t, h.sender.lastText(t), "Germany")
}

func TestBot_DeleteCancelLeavesOtherChallenge(t *testing.T) {
	h := newHarness(t)
	germany := h.host(t, "Germany")

	h.press(adminID, "delete:"+germany.UUID+":host")
	hostMessage := h.lastID
	alice := h.user(t, "alice")
	h.press(adminID, "delete:"+alice.UUID+":user")

	h.pressOn(hostMessage, "delete_cancel:"+germany.UUID+":host")

	f, ok := activeFlow[*flow.DeleteFlow](h.bot.sessions, h.key())
	require.True(t, ok, "challenge was disarmed")
	assert.Equal(t, alice.UUID, f.TargetID)
}

func TestBot_NewFlowDiscardsOld(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "create:host")
	h.text(adminID, "edge1")

	h.press(adminID, "search:users")
	_, isSearch := activeFlow[*flow.SearchFlow](h.bot.sessions, h.key())
	assert.True(t, isSearch)
	assert.Equal(t, 1, h.bot.sessions.Len())

	// the old wizard's buttons no longer apply
	h.press(adminID, "create_inbound:0")
	assert.NotEmpty(t, h.sender.alerts())
	assert.Equal(t, 0, h.panel.Calls("CreateHost"))
}

func TestBot_EditShowsPersistedValue(t *testing.T) {
	h := newHarness(t)
	germany := h.host(t, "Germany")

	h.press(adminID, "edit:"+germany.UUID+":host")
	h.press(adminID, "edit_field:remark")
	h.text(adminID, "Frankfurt")

	assert.Equal(t, 1, h.panel.Calls("UpdateHost"))
	text := h.sender.lastText(t)
	assert.Contains(t, text, "Frankfurt")
	assert.Contains(t, text, "updated")
	assert.Equal(t, "Frankfurt", h.host(t, "Frankfurt").Remark)

	// still editing until Done
	_, ok := activeFlow[*flow.EditFlow](h.bot.sessions, h.key())
	assert.True(t, ok)

	h.press(adminID, "edit_value:disabled:1")
	assert.True(t, h.host(t, "Frankfurt").IsDisabled)

	h.press(adminID, "edit_done")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_EditValidation(t *testing.T) {
	h := newHarness(t)
	germany := h.host(t, "Germany")

	h.press(adminID, "edit:"+germany.UUID+":host")
	h.press(adminID, "edit_field:port")
	h.text(adminID, "abc")

	assert.Equal(t, 0, h.panel.Calls("UpdateHost"))
	assert.Contains(t, h.sender.lastText(t), "65535")
	f, ok := activeFlow[*flow.EditFlow](h.bot.sessions, h.key())
	require.True(t, ok)
	assert.Equal(t, flow.EditAwaitValue, f.Step)
}

func TestBot_BulkCreateReportsFailures(t *testing.T) {
	h := newHarness(t)
	h.panel.FailCreateUserCalls(2, 4)

	h.press(adminID, "bulk_start")
	h.press(adminID, "bulk_count:5")
	h.press(adminID, "bulk_duration:1")
	h.press(adminID, "bulk_traffic:0")
	f, ok := activeFlow[*flow.BulkFlow](h.bot.sessions, h.key())
	require.True(t, ok)
	assert.Equal(t, flow.BulkConfirm, f.Step)

	h.press(adminID, "bulk_confirm")

	assert.Equal(t, 5, h.panel.Calls("CreateUser"))
	text := h.sender.lastText(t)
	assert.Contains(t, text, "Total: 5")
	assert.Contains(t, text, "Created: 3")
	assert.Contains(t, text, "Failed: 2")
	assert.Contains(t, text, "create failed")
	assert.Equal(t, 0, h.bot.sessions.Len())

	page, err := h.panel.ListUsers(h.ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, page.Users, 6)
}

func TestBot_BulkRejectsOutOfStepButton(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "bulk_start")
	h.press(adminID, "bulk_traffic:100")

	assert.NotEmpty(t, h.sender.alerts())
	f, ok := activeFlow[*flow.BulkFlow](h.bot.sessions, h.key())
	require.True(t, ok)
	assert.Equal(t, flow.BulkCount, f.Step)
}

func TestBot_Search(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "search:users")
	h.text(adminID, "zzz")
	assert.Contains(t, h.sender.lastText(t), "Nothing found")
	_, ok := activeFlow[*flow.SearchFlow](h.bot.sessions, h.key())
	assert.True(t, ok)

	h.text(adminID, "ALICE")
	assert.Contains(t, h.sender.lastText(t), "alice")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_MassDisable(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "mass:disable")
	assert.Contains(t, h.sender.lastText(t), "Disable all users")
	assert.Equal(t, 0, h.panel.Calls("DisableUser"))

	h.press(adminID, "mass_ok:disable")
	assert.Equal(t, 3, h.panel.Calls("DisableUser"))
	assert.Contains(t, h.sender.lastText(t), "Total: 3")

	page, err := h.panel.ListUsers(h.ctx, 0, 100)
	require.NoError(t, err)
	for _, u := range page.Users {
		assert.Equal(t, models.UserStatusDisabled, u.Status, u.Username)
	}
}

func TestBot_PanelErrorEndsFlow(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "create:host")
	h.text(adminID, "edge1")
	h.text(adminID, "10.0.0.5")
	h.panel.FailNext("ListInbounds", &panel.APIError{Status: http.StatusServiceUnavailable, Code: "A503", Message: "panel is down"})

	h.text(adminID, "443")

	text := h.sender.lastText(t)
	assert.Contains(t, text, "Panel error")
	assert.Contains(t, text, "panel is down")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_CancelCommand(t *testing.T) {
	h := newHarness(t)

	h.text(adminID, "/cancel")
	assert.Contains(t, h.sender.lastText(t), "Nothing to cancel")

	h.press(adminID, "create:user")
	h.text(adminID, "/cancel")
	assert.Contains(t, h.sender.lastText(t), "Cancelled")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_TextWithoutFlow(t *testing.T) {
	h := newHarness(t)

	h.text(adminID, "hello")

	assert.Contains(t, h.sender.lastText(t), "/menu")
	assert.Equal(t, 0, h.bot.sessions.Len())
}

func TestBot_BatchDoesNotBlockOtherChats(t *testing.T) {
	h := newHarness(t)
	h.bot.bulkDelay = 200 * time.Millisecond
	otherChat := chatID + 1

	h.bot.dispatch(h.ctx, callbackUpdate(adminID, chatID, 1, "mass_ok:disable"))
	require.Eventually(t, func() bool { return h.panel.Calls("DisableUser") >= 1 }, time.Second, 5*time.Millisecond)

	h.bot.dispatch(h.ctx, textUpdate(adminID, otherChat, "/menu"))
	require.Eventually(t, func() bool { return h.sender.sentTo(otherChat) > 0 }, time.Second, 5*time.Millisecond)
	assert.Less(t, h.panel.Calls("DisableUser"), 3, "the other chat waited for the batch")

	h.bot.Wait()
	assert.Equal(t, 3, h.panel.Calls("DisableUser"))
}

func TestBot_DevicesSection(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, "menu:devices")
	assert.Contains(t, h.sender.lastText(t), "Devices</b> (1)")

	h.press(adminID, "hwid_dev:0")
	detail := h.sender.lastText(t)
	assert.Contains(t, detail, "hw-alice-1")
	assert.Contains(t, detail, "alice")

	h.press(adminID, "hwid_del:0:00000000")
	alerts := h.sender.alerts()
	require.NotEmpty(t, alerts)
	assert.Equal(t, view.ExpiredAlert, alerts[len(alerts)-1].Text)
	assert.Equal(t, 0, h.panel.Calls("DeleteUserDevice"))

	h.press(adminID, "hwid_del:0:"+view.DeviceFingerprint("hw-alice-1"))
	assert.Contains(t, h.sender.lastText(t), "Device removed")
	assert.Equal(t, 1, h.panel.Calls("DeleteUserDevice"))

	page, err := h.panel.ListDevices(h.ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestBot_DevicesSectionWithoutStats(t *testing.T) {
	h := newHarness(t)
	h.panel.FailNext("HWIDStats", &panel.APIError{Status: http.StatusInternalServerError, Message: "stats down"})

	h.press(adminID, "menu:devices")
	text := h.sender.lastText(t)
	assert.Contains(t, text, "Devices</b> (1)")
	assert.NotContains(t, text, "stats down")
}
