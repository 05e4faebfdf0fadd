package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/app"
	"github.com/DigneZzZ/remnabot/internal/cache"
	"github.com/DigneZzZ/remnabot/internal/config"
	"github.com/DigneZzZ/remnabot/internal/panel"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and probe the panel API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context())
	},
}

func runCheck(ctx context.Context) error {
	printHeader("remnabot check")

	cfg, err := config.Load()
	if err != nil {
		printFail("Configuration: %v", err)
		return errors.New("configuration is invalid")
	}
	printOK("Configuration loaded")
	printOK("Admins: %d", len(cfg.AdminIDs))
	if cfg.WebhookMode {
		printOK("Mode: webhook (%s)", cfg.WebhookURL)
	} else {
		printOK("Mode: polling")
	}
	printOK("Bulk creation: up to %d users, %s between calls", cfg.MaxBulkCreate, cfg.BulkCreateDelay)
	if cfg.APIToken == "" && !cfg.UseMockPanel {
		printWarn("REMNAWAVE_API_TOKEN is empty, the panel will likely reject requests")
	}

	gw := app.NewGateway(cfg, cache.Nop{}, zap.NewNop())
	if err := app.ProbePanel(ctx, gw); err != nil {
		if apiErr, ok := panel.AsAPIError(err); ok {
			printFail("Panel %s: %s (status %d)", cfg.APIURL, apiErr.Message, apiErr.Status)
		} else {
			printFail("Panel %s: %v", cfg.APIURL, err)
		}
		return errors.New("panel is not reachable")
	}
	printOK("Panel %s is reachable", cfg.APIURL)
	return nil
}
