package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Open the admin menu"},
	{Command: "menu", Description: "Open the admin menu"},
	{Command: "stats", Description: "System statistics"},
	{Command: "cancel", Description: "Cancel the current action"},
}

func (b *Bot) registerCommands() {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		b.logger.Warn("Failed to register bot commands", zap.Error(err))
	}
}

// Start runs the bot in polling mode until ctx is cancelled. Each update is
// dispatched to its own goroutine; call Wait to let them finish.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// StartWebhook sets up the bot to receive updates via webhook
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + WebhookPath)
	if err != nil {
		return errors.Wrap(err, "build webhook config")
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return errors.Wrap(err, "set webhook")
	}
	b.registerCommands()

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}
	return nil
}

// dispatch handles update in the background. A batch running for one chat
// does not hold up the others; updates of one chat still take turns on the
// session lock.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	b.inflight.Go(func() { b.HandleUpdate(ctx, update) })
}

// Wait blocks until every dispatched update has been handled
func (b *Bot) Wait() {
	b.inflight.Wait()
}

// HandleUpdate processes a single update from polling or the webhook
// endpoint. Every update passes the admin gate first.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}
