package bootstrap

import (
	"time"

	"court-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) (*time.Location, error) {
			return cfg.Booking.Location()
		},
		func(cfg config.Config) config.ReaperConfig { return cfg.Reaper },
		func(cfg config.Config) config.NotifierConfig { return cfg.Notifier },
		func(cfg config.Config) config.RateLimitConfig { return cfg.RateLimit },
	),
)
