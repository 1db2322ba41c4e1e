package srv

import (
	"context"

	"github.com/sandevgo/recall/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices starts every service in its own goroutine. A start error
// cancels the returned context so the caller can unwind.
func StartServices(ctx context.Context, services []Service) context.Context {
	ctx, cancel := context.WithCancelCause(ctx)
	logger := log.FromCtx(ctx)

	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				cancel(err)
			}
		}(service)
	}
	return ctx
}

// ShutdownServices waits for ctx and shuts services down in reverse start order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	stop(context.WithoutCancel(ctx), services)
}

func stop(ctx context.Context, services []Service) {
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}

// Stop shuts services down immediately, in reverse order.
func Stop(ctx context.Context, services []Service) {
	stop(ctx, services)
}
