package components

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewReaper,
		worker.NewDispatcher,
	),
)

// RunWorkers starts the enabled background loops and stops them with the app.
func RunWorkers(lc fx.Lifecycle, cfg config.Config, reaper *worker.Reaper, dispatcher *worker.Dispatcher, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", "worker", name, "error", err.Error())
			}
		}()
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if cfg.Reaper.Enabled {
				start("reaper", reaper.Run)
			}
			if cfg.Notifier.Enabled {
				start("dispatcher", dispatcher.Run)
			}
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
