package uow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"court-booking/internal/infra/readstore"
	"court-booking/internal/infra/repository"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errRetriesExhausted = errs.New("transaction retries exhausted")

// retryPolicy bounds how often a transaction that lost a serialization or
// deadlock race is replayed. Backoff doubles per attempt with up to 20% jitter.
type retryPolicy struct {
	maxRetries int
	base       time.Duration
}

var defaultRetry = retryPolicy{maxRetries: 3, base: 50 * time.Millisecond}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base << attempt
	return d + rand.N(d/5+1)
}

// retryable reports whether Postgres aborted the transaction only because of
// contention with a concurrent one.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	}
	return false
}

type PostgresUoW struct {
	pool  *pgxpool.Pool
	q     *sqlc.Queries
	retry retryPolicy
}

func NewPostgresUoW(pool *pgxpool.Pool, q *sqlc.Queries) shared.UnitOfWork {
	return &PostgresUoW{pool: pool, q: q, retry: defaultRetry}
}

// Within runs fn in a READ COMMITTED transaction. Slot exclusivity comes
// from the advisory lock and exclusion constraint, not from isolation level.
// fn may run more than once and must not have side effects outside tx.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	for attempt := 0; ; attempt++ {
		err := pgx.BeginTxFunc(ctx, u.pool, opts, func(ptx pgx.Tx) error {
			return fn(ctx, &pgTx{tx: ptx, uow: u})
		})
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == u.retry.maxRetries {
			slog.ErrorContext(ctx, "transaction gave up", "attempts", attempt+1, "error", err.Error())
			return errs.Mark(err, errRetriesExhausted)
		}

		wait := u.retry.backoff(attempt)
		slog.WarnContext(ctx, "transaction conflict, retrying",
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

type pgTx struct {
	tx  pgx.Tx
	uow *PostgresUoW

	// Built on first use.
	reservationRepo  shared.ReservationRepository
	idempotencyRepo  shared.IdempotencyRepository
	notificationRepo shared.NotificationRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.uow.q, t.tx)
	}
	return t.reservationRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository(t.uow.q, t.tx)
	}
	return t.idempotencyRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.uow.q, t.tx)
	}
	return t.notificationRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{
			uow:  t.uow,
			dbtx: t.tx,
		}
	}
	return t.commandReads
}

// Savepoint maps onto pgx pseudo-nested transactions.
func (t *pgTx) Savepoint(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return pgx.BeginFunc(ctx, t.tx, func(sp pgx.Tx) error {
		return fn(ctx, &pgTx{tx: sp, uow: t.uow})
	})
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx sqlc.DBTX

	resourceStore *readstore.ResourceReadStore
}

func (r *commandReads) ResourceByID(ctx context.Context, id uuid.UUID) (*shared.ResourceSnapshot, error) {
	if r.resourceStore == nil {
		r.resourceStore = readstore.NewResourceReadStore(r.uow.q, r.dbtx)
	}

	resource, err := r.resourceStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &shared.ResourceSnapshot{
		ID:        resource.ID,
		VenueID:   resource.VenueID,
		OwnerID:   resource.OwnerID,
		Name:      resource.Name,
		UnitPrice: resource.UnitPrice,
		Currency:  resource.Currency,
	}, nil
}
