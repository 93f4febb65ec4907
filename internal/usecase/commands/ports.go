package commands

import (
	"context"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// PaymentGateway is the payment intent adapter. correlationID is the
// reservation id and doubles as the gateway idempotency key.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, correlationID uuid.UUID) (payment.Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (payment.Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	VerifyNotification(payload []byte, signatureHeader string) (payment.Event, error)
}

// ExpiryIndex tracks pending holds by deadline. It is a hint for the reaper,
// never the source of truth; Sync rebuilds it from the store.
type ExpiryIndex interface {
	Add(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	Remove(ctx context.Context, id uuid.UUID) error
	Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	Sync(ctx context.Context, entries []shared.ExpiryEntry) error
}

type EventDeduper interface {
	// Seen reports whether eventID was already applied within the retention window.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Remember records eventID as applied.
	Remember(ctx context.Context, eventID string) error
}
