package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/pkg/log"
)

var (
	debug bool
	owner string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Long-term memory for conversational assistants",
	Long: `recall extracts durable facts about a user from chat messages, stores them
as embedded, categorised memories and retrieves the most relevant ones for a query.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initEnv(config.GetRuntimePath())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&owner, "owner", "o", "", "owner id (defaults to RECALL_OWNER_ID)")
}

// setupLogger writes logs to out; commands that speak a protocol on stdout pass stderr.
func setupLogger(ctx context.Context, out io.Writer) (context.Context, func()) {
	opts := log.Options{Debug: debug || config.IsDebug(), Out: out}
	if cfg, err := config.LoadAppConfig(); err == nil {
		opts.JSON = cfg.LogJSON
	}
	return log.NewContextWithLogger(ctx, opts)
}

func ownerID(cfg *config.AppConfig) string {
	if owner != "" {
		return owner
	}
	return cfg.DefaultOwnerID
}
