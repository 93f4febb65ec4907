package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"court-booking/cmd/bootstrap"
	"court-booking/cmd/bootstrap/components"
	"court-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	var withoutWorkers bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API together with the reaper and notification dispatcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []fx.Option{
				bootstrap.Module,
				fx.Provide(func() *gin.Engine { return gin.New() }),
				fx.Invoke(startServer),
				fx.NopLogger,
			}
			if !withoutWorkers {
				opts = append(opts, fx.Invoke(components.RunWorkers))
			}

			app := fx.New(opts...)
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}

			<-app.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := app.Stop(stopCtx); err != nil {
				slog.Error("application stopped with error", "error", err)
				return err
			}
			slog.Info("application stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withoutWorkers, "no-workers", false, "serve HTTP only; run `reap` elsewhere")
	return cmd
}

// @title           court-booking
// @version         1.0
// @description     Court reservations with payment-backed holds.

// @BasePath  /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return srv.Shutdown(ctx)
		},
	})
}
