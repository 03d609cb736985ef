package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorrc/social-realtime/internal/infrastructure/logging"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "livewatch",
		Short:        "Watch the social-realtime live feed from the terminal",
		Long:         "livewatch connects to the live endpoint as a user, keeps a local mirror of posts, notifications, messages and presence, and prints every change it applies.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newWatchCmd(opts),
		newTokenCmd(),
	)

	return rootCmd
}

func (o *rootOptions) logger() *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:       o.logLevel,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "livewatch",
		Environment: "cli",
	})
}
