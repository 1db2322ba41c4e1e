package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Debug bool
	// Out defaults to stdout. Commands that speak a protocol over stdout
	// (the MCP server) must point it at stderr.
	Out io.Writer
	// JSON disables the console writer.
	JSON bool
}

func NewContextWithLogger(ctx context.Context, opts Options) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	// Use a diode (ring buffer) for non-blocking logging
	wr := diode.NewWriter(out, 1000, 5*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "Logger Dropped %d messages\n", missed)
	})

	var output io.Writer = wr
	if !opts.JSON {
		output = zerolog.ConsoleWriter{
			Out:        wr,
			TimeFormat: time.DateTime,
			PartsOrder: []string{
				zerolog.LevelFieldName,
				zerolog.TimestampFieldName,
				zerolog.CallerFieldName,
				zerolog.MessageFieldName,
			},
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(2).
		Logger()

	log.Logger = logger

	return log.With().Logger().WithContext(ctx), func() {
		wr.Close()
	}
}

// FromCtx returns the context logger, or a disabled logger when none is set.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}

// WithComponent returns a child context whose logger carries a component field.
func WithComponent(ctx context.Context, component string) (context.Context, *zerolog.Logger) {
	logger := FromCtx(ctx).With().Str("component", component).Logger()
	return logger.WithContext(ctx), &logger
}
