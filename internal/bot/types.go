package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/session"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// Sender is the part of the Telegram API the handlers use.
// *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	panel    panel.Gateway
	admins   map[int64]bool
	sessions *session.Store
	logger   *zap.Logger
	routes   map[string]callbackHandler
	inflight sync.WaitGroup

	maxBulk     int
	bulkDelay   time.Duration
	newUsername func() (string, error)
	now         func() time.Time
}

// Options carries the settings the bot needs from configuration
type Options struct {
	AdminIDs        []int64
	MaxBulkCreate   int
	BulkCreateDelay time.Duration
}

// request is one admin interaction being handled
type request struct {
	ctx context.Context
	key session.Key

	// messageID is the message to edit in place; 0 sends a new one
	messageID int
	// callbackID is set for button presses
	callbackID string
	answered   bool
}

func (r *request) chatID() int64 { return r.key.ChatID }

type callbackHandler func(req *request, cb view.Callback) error
