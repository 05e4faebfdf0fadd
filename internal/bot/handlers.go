package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/session"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// handleMessage gates and routes a text message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}
	userID := message.From.ID
	if !b.admins[userID] {
		b.logger.Warn("Unauthorized access attempt",
			zap.Int64("user_id", userID),
			zap.String("username", message.From.UserName),
			zap.String("text", message.Text),
		)
		b.sendText(message.Chat.ID, view.DeniedText)
		return
	}

	req := &request{ctx: ctx, key: session.Key{ChatID: message.Chat.ID, UserID: userID}}
	unlock := b.sessions.Lock(req.key)
	defer unlock()

	b.guard(req, func() error { return b.routeMessage(req, message) })
}

// handleCallbackQuery gates and routes an inline keyboard button press
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	userID := query.From.ID
	if !b.admins[userID] {
		b.logger.Warn("Unauthorized callback query attempt",
			zap.Int64("user_id", userID),
			zap.String("username", query.From.UserName),
			zap.String("callback_data", query.Data),
		)
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, view.DeniedAlert))
		return
	}
	if query.Message == nil || query.Message.Chat == nil {
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, view.ExpiredAlert))
		return
	}

	req := &request{
		ctx:        ctx,
		key:        session.Key{ChatID: query.Message.Chat.ID, UserID: userID},
		messageID:  query.Message.MessageID,
		callbackID: query.ID,
	}
	unlock := b.sessions.Lock(req.key)
	defer unlock()

	b.guard(req, func() error {
		cb := view.ParseData(query.Data)
		handler, ok := b.routes[cb.Action]
		if !ok {
			b.logger.Warn("Unknown callback", zap.String("callback_data", query.Data))
			b.alert(req, view.UnknownAlert)
			return nil
		}
		return handler(req, cb)
	})

	if !req.answered {
		b.request(tgbotapi.NewCallback(query.ID, ""))
	}
}

// guard is the error boundary around every handler. A panel error or an
// unexpected failure ends the active flow; the admin always gets a message.
func (b *Bot) guard(req *request, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", req.key.ChatID),
				zap.Stack("stack"),
			)
			b.sessions.End(req.key)
			b.show(req, view.Internal())
		}
	}()

	err := fn()
	if err == nil {
		return
	}
	b.sessions.End(req.key)

	if apiErr, ok := panel.AsAPIError(err); ok {
		b.logger.Warn("Panel call failed",
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
			zap.Int64("chat_id", req.key.ChatID),
		)
		b.show(req, view.Error(apiErr.Message))
		return
	}

	b.logger.Error("Handler failed",
		zap.Error(err),
		zap.String("detail", fmt.Sprintf("%+v", err)),
		zap.Int64("chat_id", req.key.ChatID),
	)
	b.show(req, view.Internal())
}

// routeMessage dispatches commands and flow text input
func (b *Bot) routeMessage(req *request, message *tgbotapi.Message) error {
	if message.IsCommand() {
		switch message.Command() {
		case "start", "menu", "help":
			b.sessions.End(req.key)
			b.show(req, view.MainMenu())
			return nil
		case "cancel":
			_, had := b.sessions.End(req.key)
			b.show(req, view.Cancelled(had))
			return nil
		case "stats":
			return b.showStats(req)
		default:
			b.sendText(req.chatID(), "Unknown command. Use /menu to open the admin menu.")
			return nil
		}
	}

	sess, ok := b.sessions.Get(req.key)
	if !ok {
		b.sendText(req.chatID(), "Use /menu to open the admin menu.")
		return nil
	}

	// the wizard message is edited in place and the admin's input removed
	if sess.Anchor != nil {
		req.messageID = sess.Anchor.MessageID
	}
	defer b.deleteMessage(req.chatID(), message.MessageID)

	text := strings.TrimSpace(message.Text)
	switch f := sess.Flow.(type) {
	case *flow.CreateFlow:
		return b.createText(req, f, text)
	case *flow.EditFlow:
		return b.editText(req, f, text)
	case *flow.DeleteFlow:
		return b.deleteText(req, f, text)
	case *flow.SearchFlow:
		return b.searchText(req, f, text)
	case *flow.BulkFlow:
		b.showFlow(req, view.Bulk(f, "Use the buttons to choose."))
		return nil
	default:
		return errors.Errorf("unexpected flow %T", sess.Flow)
	}
}

func (b *Bot) callbackRoutes() map[string]callbackHandler {
	return map[string]callbackHandler{
		view.ActMenu:      b.onMenu,
		view.ActUsersPage: b.onUsersPage,
		view.ActCancel:    b.onCancel,

		view.ActUser:           b.onUser,
		view.ActUserExtend:     b.onUserExtend,
		view.ActUserReset:      b.onUserReset,
		view.ActUserEnable:     b.onUserEnable,
		view.ActUserDisable:    b.onUserDisable,
		view.ActUserDevices:    b.onUserDevices,
		view.ActDeviceDelete:   b.onDeviceDelete,
		view.ActDevicesClear:   b.onDevicesClear,
		view.ActDevicesClearOK: b.onDevicesClearOK,

		view.ActDevicesPage: b.onDevicesPage,
		view.ActDevice:      b.onDevice,
		view.ActDeviceDrop:  b.onDeviceDrop,

		view.ActHost:       b.onHost,
		view.ActHostToggle: b.onHostToggle,

		view.ActNode:        b.onNode,
		view.ActNodeEnable:  b.onNodeEnable,
		view.ActNodeDisable: b.onNodeDisable,
		view.ActNodeRestart: b.onNodeRestart,

		view.ActSquad: b.onSquad,

		view.ActEdit:      b.onEdit,
		view.ActEditField: b.onEditField,
		view.ActEditValue: b.onEditValue,
		view.ActEditBack:  b.onEditBack,
		view.ActEditDone:  b.onEditDone,

		view.ActDelete:       b.onDelete,
		view.ActDeleteCancel: b.onDeleteCancel,

		view.ActCreate:        b.onCreate,
		view.ActCreateInbound: b.onCreateInbound,
		view.ActCreateConfirm: b.onCreateConfirm,

		view.ActBulkStart:    b.onBulkStart,
		view.ActBulkCount:    b.onBulkCount,
		view.ActBulkDuration: b.onBulkDuration,
		view.ActBulkTraffic:  b.onBulkTraffic,
		view.ActBulkReset:    b.onBulkReset,
		view.ActBulkConfirm:  b.onBulkConfirm,

		view.ActSearch: b.onSearch,

		view.ActMass:   b.onMass,
		view.ActMassOK: b.onMassOK,
	}
}

// activeFlow returns the session's flow if it has type T
func activeFlow[T flow.Flow](store *session.Store, key session.Key) (T, bool) {
	var zero T
	sess, ok := store.Get(key)
	if !ok {
		return zero, false
	}
	f, ok := sess.Flow.(T)
	return f, ok
}

// begin makes f the active flow and anchors it to the displayed screen
func (b *Bot) begin(req *request, f flow.Flow, s view.Screen) {
	b.sessions.Begin(req.key, f)
	ref := b.show(req, s)
	b.sessions.SetAnchor(req.key, ref)
	b.logger.Debug("Flow started", zap.Stringer("kind", f.Kind()), zap.Int64("chat_id", req.key.ChatID))
}
