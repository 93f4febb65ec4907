package main

import (
	"context"
	"log/slog"
	"time"

	"court-booking/cmd/bootstrap"
	"court-booking/internal/usecase/worker"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newReapCmd() *cobra.Command {
	var resync bool

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Run one expiry sweep and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reaper *worker.Reaper
				logger *slog.Logger
			)
			app := fx.New(bootstrap.CoreModule, fx.Populate(&reaper, &logger), fx.NopLogger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			if resync {
				if err := reaper.Resync(ctx); err != nil {
					logger.Warn("expiry index resync failed", "error", err.Error())
				}
			}

			result, err := reaper.Sweep(ctx)
			if err != nil {
				return err
			}
			logger.Info("sweep finished",
				"candidates", result.Candidates,
				"expired", result.Expired,
				"failed", result.Failed,
				"purged_keys", result.PurgedKeys)
			return nil
		},
	}

	cmd.Flags().BoolVar(&resync, "resync", true, "rebuild the expiry index from the store before sweeping")
	return cmd
}
