package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"court-booking/internal/handler/api"
	"court-booking/internal/handler/httperr"
	"court-booking/internal/handler/middleware"
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Reservation *api.ReservationHandler
	Resource    *api.ResourceHandler
	Webhook     *api.WebhookHandler
	// Ready backs /ready; nil reports ready unconditionally.
	Ready func(ctx context.Context) error
}

type Middlewares struct {
	// Logger defaults to slog.Default when nil.
	Logger    *slog.Logger
	Auth      *middleware.AuthMiddleware
	RateLimit *middleware.RateLimiter
	Metrics   *metrics.Metrics
	// Gatherer backs the /metrics endpoint; nil disables it.
	Gatherer prometheus.Gatherer
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, mw Middlewares) {
	setupMiddleware(engine, cfg, mw)
	setupRoutes(engine, cfg, h, mw)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, mw Middlewares) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogging(mw.Logger))
	engine.Use(middleware.Metrics(mw.Metrics))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, mw Middlewares) {
	engine.GET("/health", healthCheck)
	engine.GET("/ready", readinessCheck(h.Ready))

	if cfg.Metrics.Enabled && mw.Gatherer != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(mw.Gatherer, promhttp.HandlerOpts{})))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Authenticated by signature, not by token.
	engine.POST("/webhooks/payments", h.Webhook.PaymentNotification)

	limited := []gin.HandlerFunc{mw.RateLimit.Handler()}

	apiGroup := engine.Group("/api")
	apiGroup.Use(mw.Auth.RequireAuth())
	{
		reservations := apiGroup.Group("/reservations")
		addRoutes(reservations, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Reservation.CreateReservation, Mw: limited},
			{Method: http.MethodGet, Path: "", Handler: h.Reservation.ListReservations},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetReservation},
			{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Reservation.ConfirmReservation, Mw: limited},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.CancelReservation, Mw: limited},
			{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Reservation.CompleteReservation, Mw: limited},
		})

		resources := apiGroup.Group("/resources")
		addRoutes(resources, []route{
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Resource.Availability},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

const readyTimeout = 2 * time.Second

var errNotReady = errors.New("dependency check failed")

// @Summary Readiness check
// @Description Report whether the database is reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} httperr.Response
// @Router /ready [get]
func readinessCheck(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			defer cancel()
			if err := ready(ctx); err != nil {
				slog.WarnContext(ctx, "readiness check failed", "error", err.Error())
				httperr.AbortWithCode(c, http.StatusServiceUnavailable, httperr.CodeUnavailable, errs.Mark(err, errNotReady), "Service not ready")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// addRoutes mounts each route with its own middleware ahead of the handler.
func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		g.Handle(r.Method, r.Path, slices.Concat(r.Mw, []gin.HandlerFunc{r.Handler})...)
	}
}
