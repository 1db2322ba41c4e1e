package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/transport/mcp"
	"github.com/sandevgo/recall/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory tools over MCP on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		return withApp(os.Stderr, func(ctx context.Context, app *App) error {
			server := mcp.NewServer(app.Pipeline, app.Owner(), app.Memory.SearchLimit, os.Stdin, os.Stdout)
			app.Services = append(app.Services, server)

			log.FromCtx(ctx).Debug().Str("owner", app.Owner()).Msg("default owner")
			return server.Start(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
