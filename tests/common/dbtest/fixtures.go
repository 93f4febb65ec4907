//go:build unit || e2e

package dbtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestResource inserts a bookable court owned by ownerID.
func CreateTestResource(t *testing.T, db Conn, ownerID uuid.UUID, name string, unitPrice int64) uuid.UUID {
	t.Helper()

	resourceID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO resources (id, venue_id, owner_id, name, unit_price, currency) VALUES ($1, $2, $3, $4, $5, 'jpy')",
		resourceID, uuid.New(), ownerID, name, unitPrice)
	require.NoError(t, err)

	return resourceID
}

// ExpireHold moves a pending reservation's deadline into the past.
func ExpireHold(t *testing.T, db Conn, reservationID uuid.UUID) {
	t.Helper()

	tag, err := db.Exec(context.Background(),
		"UPDATE reservations SET expires_at = NOW() - INTERVAL '1 minute' WHERE id = $1 AND status = 'pending'",
		reservationID)
	require.NoError(t, err)
	require.Equal(t, int64(1), tag.RowsAffected(), "reservation %s is not pending", reservationID)
}

// CountNotificationJobs returns queued or sent jobs of the given kind.
func CountNotificationJobs(t *testing.T, db Conn, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM notification_jobs WHERE kind = $1", kind).Scan(&n)
	require.NoError(t, err)
	return n
}

// NotificationKinds lists the job kinds queued for a reservation, oldest first.
func NotificationKinds(t *testing.T, db Conn, reservationID uuid.UUID) []string {
	t.Helper()

	rows, err := db.Query(context.Background(),
		"SELECT kind FROM notification_jobs WHERE payload->>'reservation_id' = $1 ORDER BY created_at, id",
		reservationID.String())
	require.NoError(t, err)

	kinds, err := pgx.CollectRows(rows, pgx.RowTo[string])
	require.NoError(t, err)
	return kinds
}

func ReservationStatus(t *testing.T, db Conn, reservationID uuid.UUID) (status, cancelReason string) {
	t.Helper()

	var reason *string
	err := db.QueryRow(context.Background(),
		"SELECT status, cancel_reason FROM reservations WHERE id = $1", reservationID).Scan(&status, &reason)
	require.NoError(t, err)
	if reason != nil {
		cancelReason = *reason
	}
	return status, cancelReason
}

// The table list is built once per process; the schema does not change
// while tests run.
var (
	truncateOnce sync.Once
	truncateSQL  string
	truncateErr  error
)

// ResetDB empties every table except the migration ledger.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	truncateOnce.Do(func() {
		truncateSQL, truncateErr = buildTruncate(ctx, pool)
	})
	if truncateErr != nil {
		return fmt.Errorf("build truncate statement: %w", truncateErr)
	}
	_, err := pool.Exec(ctx, truncateSQL)
	return err
}

func buildTruncate(ctx context.Context, db Conn) (string, error) {
	rows, err := db.Query(ctx, `
		SELECT 'public.' || quote_ident(tablename)
		FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
		ORDER BY tablename`)
	if err != nil {
		return "", err
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", errors.New("no tables to truncate; were migrations applied?")
	}
	return "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE", nil
}
