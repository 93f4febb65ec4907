// Package migrations embeds the schema and applies it in filename order.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"court-booking/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// lockKey keeps concurrent migrators (rolling deploys, parallel test
// processes) from interleaving.
const lockKey = "court-booking:migrations"

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Versions lists the embedded migration files in apply order.
func Versions() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, errs.Wrap(err, "list migrations")
	}
	slices.Sort(names)
	return names, nil
}

// Apply runs every migration not yet recorded in schema_migrations, each in
// its own transaction, and returns the versions it applied.
func Apply(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	versions, err := Versions()
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "acquire migration connection")
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtext($1))", lockKey); err != nil {
		return nil, errs.Wrap(err, "take migration lock")
	}
	defer func() {
		if _, err := conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock(hashtext($1))", lockKey); err != nil {
			slog.Warn("release migration lock", "error", err.Error())
		}
	}()

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, errs.Wrap(err, "create schema_migrations")
	}

	rows, err := conn.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errs.Wrap(err, "read schema_migrations")
	}
	done, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errs.Wrap(err, "read schema_migrations")
	}

	var applied []string
	for _, v := range versions {
		if slices.Contains(done, v) {
			continue
		}
		if err := applyOne(ctx, conn.Conn(), v); err != nil {
			return applied, err
		}
		slog.Info("migration applied", "version", v)
		applied = append(applied, v)
	}
	return applied, nil
}

func applyOne(ctx context.Context, conn *pgx.Conn, version string) error {
	sql, err := files.ReadFile(version)
	if err != nil {
		return errs.Wrapf(err, "read %s", version)
	}
	if strings.TrimSpace(string(sql)) == "" {
		return errs.Newf("migration %s is empty", version)
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return errs.Wrapf(err, "apply %s", version)
		}
		_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
		return errs.Wrapf(err, "record %s", version)
	})
}
