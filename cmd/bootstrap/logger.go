package bootstrap

import (
	"log/slog"

	"court-booking/internal/handler/middleware"
	"court-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger is shared by the HTTP surface and the workers so both use the
// same level, zone and format.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log)
}
