package log

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger adapts zerolog to goose's Logger interface. Migration progress
// is noisy, so it is logged at debug level.
type GooseLogger struct {
	logger *zerolog.Logger
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Str("component", "migrations").Msgf(strings.TrimSpace(format), v...)
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: FromCtx(ctx),
	}
}
