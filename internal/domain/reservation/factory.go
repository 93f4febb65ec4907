package reservation

import (
	"time"

	"court-booking/internal/domain/resource"
	"court-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

const DefaultHoldTimeout = 15 * time.Minute

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	HoldTimeout     time.Duration
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator, holdTimeout time.Duration) *Factory {
	if holdTimeout <= 0 {
		holdTimeout = DefaultHoldTimeout
	}
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
		HoldTimeout:     holdTimeout,
	}
}

// CreateReservation builds a pending reservation holding slot until now+HoldTimeout.
// The total price is fixed here and never recomputed.
func (f *Factory) CreateReservation(res *resource.Resource, userID uuid.UUID, slot Slot) (*Reservation, error) {
	if slot.ResourceID() != res.ID() {
		return nil, ErrInvalidSlot
	}

	unitPrice, err := NewMoney(res.UnitPrice())
	if err != nil {
		return nil, err
	}

	total, err := f.PriceCalculator.Calculate(unitPrice, slot)
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	expiresAt := now.Add(f.HoldTimeout)

	return &Reservation{
		id:            uuid.New(),
		userID:        userID,
		venueID:       res.VenueID(),
		slot:          slot,
		unitPrice:     unitPrice,
		totalPrice:    total,
		currency:      res.Currency(),
		status:        StatusPending,
		paymentStatus: PaymentPending,
		createdAt:     now,
		updatedAt:     now,
		expiresAt:     &expiresAt,
	}, nil
}
