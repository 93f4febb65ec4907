package components

import (
	"log/slog"

	"court-booking/internal/handler"
	"court-booking/internal/handler/api"
	"court-booking/internal/handler/middleware"
	"court-booking/internal/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewResourceHandler,
		api.NewWebhookHandler,
		middleware.NewAuthMiddleware,
		middleware.NewRateLimiter,
		func(r *api.ReservationHandler, res *api.ResourceHandler, w *api.WebhookHandler, pool *pgxpool.Pool) handler.Handlers {
			return handler.Handlers{Reservation: r, Resource: res, Webhook: w, Ready: pool.Ping}
		},
		func(
			logger *slog.Logger,
			auth *middleware.AuthMiddleware,
			rl *middleware.RateLimiter,
			m *metrics.Metrics,
			g prometheus.Gatherer,
		) handler.Middlewares {
			return handler.Middlewares{Logger: logger, Auth: auth, RateLimit: rl, Metrics: m, Gatherer: g}
		},
	),
	fx.Invoke(handler.NewRouter),
)
