package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/session"
)

// NewBot creates a new Telegram bot
func NewBot(token string, gw panel.Gateway, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, errors.Wrap(err, "create bot")
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(api, gw, opts, logger)
	b.api = api
	return b, nil
}

func newBot(sender Sender, gw panel.Gateway, opts Options, logger *zap.Logger) *Bot {
	admins := make(map[int64]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}

	b := &Bot{
		sender:      sender,
		panel:       gw,
		admins:      admins,
		sessions:    session.NewStore(),
		logger:      logger,
		maxBulk:     opts.MaxBulkCreate,
		bulkDelay:   opts.BulkCreateDelay,
		newUsername: flow.RandomUsername,
		now:         time.Now,
	}
	b.routes = b.callbackRoutes()
	return b
}
