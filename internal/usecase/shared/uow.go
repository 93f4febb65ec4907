package shared

import (
	"context"
	"time"

	"court-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	// Savepoint runs fn in a nested transaction. An error from fn rolls back
	// only the writes fn made; the enclosing transaction stays usable.
	Savepoint(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type CommandReads interface {
	ResourceByID(ctx context.Context, id uuid.UUID) (*ResourceSnapshot, error)
}

// ReservationRepository is the reservation store. TryReserve is the conflict
// guard; it is the only path that inserts reservations.
type ReservationRepository interface {
	TryReserve(ctx context.Context, r *reservation.Reservation) error
	// Release moves an active reservation to cancelled. It reports false when
	// the reservation was already terminal.
	Release(ctx context.Context, id uuid.UUID, reason reservation.CancelReason, at time.Time) (bool, error)
	FindOverlapping(ctx context.Context, slot reservation.Slot) ([]*reservation.Reservation, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	GetByIntentForUpdate(ctx context.Context, intentID string) (*reservation.Reservation, error)
	Save(ctx context.Context, r *reservation.Reservation) error
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]ExpiryEntry, error)
	ListPendingExpiries(ctx context.Context, limit int) ([]ExpiryEntry, error)
}

type IdempotencyRepository interface {
	// TryInsert claims key for this request. It reports false when a live
	// record for the key already exists.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt, now time.Time) (bool, error)
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	Complete(ctx context.Context, key, userID, reservationID uuid.UUID) error
	Delete(ctx context.Context, key, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationRepository interface {
	Enqueue(ctx context.Context, job NewNotificationJob) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	RequeueStale(ctx context.Context, staleBefore time.Time) (int64, error)
}
