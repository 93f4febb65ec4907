package main

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/infra/db"
	"court-booking/internal/pkg/config"
	"court-booking/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, cleanup, err := db.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			applied, err := migrations.Apply(ctx, pool)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "schema up to date", "applied", len(applied))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "give up if migrations take longer")
	return cmd
}
