package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/infra/cache"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCache,
	),
)

type CacheResult struct {
	fx.Out

	Index   commands.ExpiryIndex
	Deduper commands.EventDeduper
}

// NewCache uses Redis when REDIS_ADDR is set. Without it the index and dedupe
// live in process, which is only correct for a single replica.
func NewCache(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (CacheResult, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, using in-process expiry index and event dedupe")
		return CacheResult{
			Index:   cache.NewMemoryExpiryIndex(),
			Deduper: cache.NewMemoryEventDeduper(cfg.Redis.DedupeTTL),
		}, nil
	}

	client := cache.NewRedisClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			// The index is a hint, so an unreachable Redis is logged, not fatal.
			if err := client.Ping(pingCtx).Err(); err != nil {
				logger.Warn("redis ping failed", "addr", cfg.Redis.Addr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return CacheResult{
		Index:   cache.NewRedisExpiryIndex(client, cfg.Redis.KeyPrefix),
		Deduper: cache.NewRedisEventDeduper(client, cfg.Redis.KeyPrefix, cfg.Redis.DedupeTTL),
	}, nil
}
