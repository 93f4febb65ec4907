package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/infra/db"
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const dbStartupTimeout = 15 * time.Second

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
	fx.Invoke(func(reg *prometheus.Registry, pool *pgxpool.Pool) error {
		return metrics.RegisterPool(reg, pool)
	}),
)

// NewDB connects eagerly so a bad DSN fails the app before any listener
// starts. The pool is closed after every other OnStop hook has run.
func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbStartupTimeout)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			stat := pool.Stat()
			slog.Info("database pool draining",
				"acquired", stat.AcquiredConns(),
				"total", stat.TotalConns(),
			)
			cleanup()
			return nil
		},
	})

	return pool, nil
}
