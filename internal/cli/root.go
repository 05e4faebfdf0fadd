package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DigneZzZ/remnabot/internal/app"
)

// version can be overridden at build time via:
// go build -ldflags "-X github.com/DigneZzZ/remnabot/internal/cli.version=1.2.3"
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "remnabot",
	Short:         "Telegram admin bot for a Remnawave panel",
	Long:          color.CyanString("remnabot") + "\nManage Remnawave users, hosts, nodes and squads from Telegram.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printFail("%v", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
}

func runBot(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New()
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
