package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// withApp sets up logging and the memory pipeline, runs fn and tears
// everything down. logOut receives the logs.
func withApp(logOut io.Writer, fn func(ctx context.Context, app *App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, closeLogger := setupLogger(ctx, logOut)
	defer closeLogger()

	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	return fn(ctx, app)
}
