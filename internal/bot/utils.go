package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/session"
	"github.com/DigneZzZ/remnabot/internal/view"
)

const errNotModified = "message is not modified"

// show edits the request's message in place, or sends a new one when
// there is nothing to edit or the edit fails. It returns the message now
// showing the screen.
func (b *Bot) show(req *request, s view.Screen) session.MessageRef {
	if req.messageID != 0 {
		err := b.edit(req.chatID(), req.messageID, s)
		if err == nil {
			return session.MessageRef{ChatID: req.chatID(), MessageID: req.messageID}
		}
		b.logger.Debug("Edit failed, sending a new message", zap.Error(err))
	}

	msg := tgbotapi.NewMessage(req.chatID(), s.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if s.Keyboard != nil {
		msg.ReplyMarkup = *s.Keyboard
	}
	sent, err := b.sender.Send(msg)
	if err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", req.chatID()))
		return session.MessageRef{ChatID: req.chatID()}
	}
	req.messageID = sent.MessageID
	return session.MessageRef{ChatID: req.chatID(), MessageID: sent.MessageID}
}

// showFlow renders a step of the active flow and keeps its anchor current
func (b *Bot) showFlow(req *request, s view.Screen) {
	ref := b.show(req, s)
	if ref.MessageID != 0 {
		b.sessions.SetAnchor(req.key, ref)
	}
}

func (b *Bot) edit(chatID int64, messageID int, s view.Screen) error {
	var cfg tgbotapi.EditMessageTextConfig
	if s.Keyboard != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, s.Text, *s.Keyboard)
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, s.Text)
	}
	cfg.ParseMode = tgbotapi.ModeHTML
	cfg.DisableWebPagePreview = true

	_, err := b.sender.Send(cfg)
	if err != nil && strings.Contains(err.Error(), errNotModified) {
		return nil
	}
	return err
}

// sendText sends a plain notice outside of any screen
func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("Failed to delete message", zap.Error(err))
	}
}

func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.sender.Request(c); err != nil {
		b.logger.Debug("Request failed", zap.Error(err))
	}
}

// alert answers the button press with a popup
func (b *Bot) alert(req *request, text string) {
	if req.callbackID == "" || req.answered {
		return
	}
	req.answered = true
	b.request(tgbotapi.NewCallbackWithAlert(req.callbackID, text))
}

// toast answers the button press with a short notification
func (b *Bot) toast(req *request, text string) {
	if req.callbackID == "" || req.answered {
		return
	}
	req.answered = true
	b.request(tgbotapi.NewCallback(req.callbackID, text))
}

// errMessage is the text shown for a failed item in a batch
func errMessage(err error) string {
	if apiErr, ok := panel.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
