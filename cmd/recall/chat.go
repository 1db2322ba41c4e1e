package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/transport/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session: every line is remembered, /search queries memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(os.Stdout, func(ctx context.Context, app *App) error {
			rl, err := cli.NewReadLine(app.Pipeline, app.Config, app.Owner(), app.Memory.SearchLimit)
			if err != nil {
				return err
			}
			defer rl.Shutdown(context.WithoutCancel(ctx))

			return rl.Start(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
