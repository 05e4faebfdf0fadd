// remnabot-dev runs the bot in polling mode against the seeded in-memory
// panel, so flows can be tried without a Remnawave installation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/DigneZzZ/remnabot/internal/app"
	"github.com/DigneZzZ/remnabot/internal/config"
)

func main() {
	_ = godotenv.Load()

	os.Setenv("USE_MOCK_PANEL", "true")
	os.Setenv("WEBHOOK_MODE", "false")
	os.Setenv("CACHE_ENABLED", "false")
	if os.Getenv("REMNAWAVE_API_URL") == "" {
		os.Setenv("REMNAWAVE_API_URL", "http://mock.panel.local")
	}
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "debug")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		color.Yellow("TELEGRAM_BOT_TOKEN not set. Put it in .env or the environment.")
	}
	if os.Getenv("ADMIN_IDS") == "" {
		color.Yellow("ADMIN_IDS not set. Put your Telegram user ID in .env or the environment.")
	}

	if err := run(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	application, err := app.NewFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Green("Running against the mock panel. Press Ctrl+C to stop.")
	return application.Run(ctx)
}
