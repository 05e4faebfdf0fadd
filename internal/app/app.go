package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/bot"
	"github.com/DigneZzZ/remnabot/internal/cache"
	"github.com/DigneZzZ/remnabot/internal/config"
	"github.com/DigneZzZ/remnabot/internal/logger"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/panel/stubs"
)

const (
	shutdownTimeout = 5 * time.Second
	probeTimeout    = 10 * time.Second
)

// App represents the application
type App struct {
	config *config.Config
	log    *logger.Logger
	cache  cache.Cache
	panel  panel.Gateway
	bot    *bot.Bot
	server *http.Server
}

// New loads configuration from .env and the environment and builds the app
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return NewFromConfig(cfg)
}

// NewFromConfig builds the app from an already loaded configuration
func NewFromConfig(cfg *config.Config) (*App, error) {
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	a := &App{config: cfg, log: log}
	a.log.Info("Starting Remnawave admin bot",
		zap.Int("admins", len(cfg.AdminIDs)),
		zap.Bool("webhook_mode", cfg.WebhookMode),
		zap.Bool("mock_panel", cfg.UseMockPanel),
	)

	a.cache = cache.Open(cfg.CacheEnabled, cfg.CachePath, a.log.Logger)
	a.panel = NewGateway(cfg, a.cache, a.log.Logger)

	if err := a.initBot(); err != nil {
		_ = a.cache.Close()
		_ = a.log.Close()
		return nil, err
	}
	return a, nil
}

// NewGateway returns the panel gateway selected by cfg, wrapped with the
// read cache. The mock panel is seeded with demo data.
func NewGateway(cfg *config.Config, c cache.Cache, log *zap.Logger) panel.Gateway {
	var gw panel.Gateway
	if cfg.UseMockPanel {
		log.Info("Using mock panel")
		gw = stubs.NewMockPanel().Seed()
	} else {
		log.Info("Using Remnawave panel", zap.String("api_url", cfg.APIURL), zap.Duration("timeout", cfg.APITimeout))
		gw = panel.NewClient(cfg.APIURL, cfg.APIToken, cfg.APITimeout, log)
	}
	return panel.NewCached(gw, c)
}

// ProbePanel checks that the panel answers with the configured credentials
func ProbePanel(ctx context.Context, gw panel.Gateway) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := gw.SystemStats(ctx); err != nil {
		return errors.Wrap(err, "probe panel")
	}
	return nil
}

func (a *App) initBot() error {
	b, err := bot.NewBot(a.config.TelegramToken, a.panel, bot.Options{
		AdminIDs:        a.config.AdminIDs,
		MaxBulkCreate:   a.config.MaxBulkCreate,
		BulkCreateDelay: a.config.BulkCreateDelay,
	}, a.log.Logger)
	if err != nil {
		return errors.Wrap(err, "create telegram bot")
	}
	a.bot = b
	return nil
}

// initHTTPServer starts the health and webhook endpoints in the background
func (a *App) initHTTPServer(ctx context.Context) {
	mux := http.NewServeMux()
	bot.NewHTTPServer(ctx, a.bot, a.config.WebhookMode).RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the bot and blocks until ctx is cancelled or polling fails
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	// An unreachable panel is not fatal; every screen reports its own error.
	if err := ProbePanel(ctx, a.panel); err != nil {
		a.log.Warn("Panel is not reachable", zap.Error(err))
	} else {
		a.log.Info("Panel is reachable")
	}

	a.initHTTPServer(ctx)

	errCh := make(chan error, 1)
	if a.config.WebhookMode {
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return errors.Wrap(err, "setup webhook")
		}
		a.log.Info("Webhook configured, waiting for updates", zap.String("path", bot.WebhookPath))
	} else {
		go func() { errCh <- a.bot.Start(ctx) }()
	}

	select {
	case <-ctx.Done():
		a.log.Info("Shutting down")
		if !a.config.WebhookMode {
			<-errCh
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "polling")
		}
		return nil
	}
}

// Shutdown stops the HTTP server and releases the cache and log files
func (a *App) Shutdown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	// No new updates arrive past this point; let the running ones finish
	// before their cache and log are closed.
	if a.bot != nil {
		a.bot.Wait()
	}
	if err := a.cache.Close(); err != nil {
		a.log.Error("Failed to close cache", zap.Error(err))
	}
	a.log.Info("Shutdown complete")
	_ = a.log.Close()
}
