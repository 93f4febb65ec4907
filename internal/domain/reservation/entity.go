package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlot       = errors.New("invalid slot")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrIntentMismatch    = errors.New("payment intent does not match reservation")
	ErrIntentAlreadySet  = errors.New("payment intent already attached")
	ErrAlreadyTerminal   = errors.New("reservation is already terminal")
	ErrInvalidTransition = errors.New("invalid reservation transition")
	ErrForbidden         = errors.New("action not permitted")
)

type Reservation struct {
	id              uuid.UUID
	userID          uuid.UUID
	venueID         uuid.UUID
	slot            Slot
	unitPrice       Money
	totalPrice      Money
	currency        string
	status          Status
	paymentIntentID string
	paymentStatus   PaymentStatus
	cancelReason    CancelReason
	createdAt       time.Time
	updatedAt       time.Time
	expiresAt       *time.Time
}

// Record is the persisted shape of a reservation.
type Record struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	VenueID         uuid.UUID
	Slot            Slot
	UnitPrice       Money
	TotalPrice      Money
	Currency        string
	Status          Status
	PaymentIntentID string
	PaymentStatus   PaymentStatus
	CancelReason    CancelReason
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       *time.Time
}

func Reconstruct(rec Record) *Reservation {
	return &Reservation{
		id:              rec.ID,
		userID:          rec.UserID,
		venueID:         rec.VenueID,
		slot:            rec.Slot,
		unitPrice:       rec.UnitPrice,
		totalPrice:      rec.TotalPrice,
		currency:        rec.Currency,
		status:          rec.Status,
		paymentIntentID: rec.PaymentIntentID,
		paymentStatus:   rec.PaymentStatus,
		cancelReason:    rec.CancelReason,
		createdAt:       rec.CreatedAt,
		updatedAt:       rec.UpdatedAt,
		expiresAt:       rec.ExpiresAt,
	}
}

func (r *Reservation) Record() Record {
	return Record{
		ID:              r.id,
		UserID:          r.userID,
		VenueID:         r.venueID,
		Slot:            r.slot,
		UnitPrice:       r.unitPrice,
		TotalPrice:      r.totalPrice,
		Currency:        r.currency,
		Status:          r.status,
		PaymentIntentID: r.paymentIntentID,
		PaymentStatus:   r.paymentStatus,
		CancelReason:    r.cancelReason,
		CreatedAt:       r.createdAt,
		UpdatedAt:       r.updatedAt,
		ExpiresAt:       r.expiresAt,
	}
}

// AttachIntent binds the gateway intent. It can be set once, while pending.
func (r *Reservation) AttachIntent(intentID string, now time.Time) error {
	if intentID == "" {
		return fmt.Errorf("%w: empty intent id", ErrIntentMismatch)
	}
	if r.paymentIntentID != "" {
		if r.paymentIntentID == intentID {
			return nil
		}
		return ErrIntentAlreadySet
	}
	if r.status != StatusPending {
		return fmt.Errorf("%w: cannot attach intent to %s reservation", ErrInvalidTransition, r.status)
	}
	r.paymentIntentID = intentID
	r.updatedAt = now
	return nil
}

// Confirm applies a successful payment. It returns true only when this call
// moved the reservation from pending to confirmed.
func (r *Reservation) Confirm(intentID string, now time.Time) (bool, error) {
	if !r.matchesIntent(intentID) {
		return false, ErrIntentMismatch
	}
	switch r.status {
	case StatusConfirmed, StatusCompleted:
		return false, nil
	case StatusCancelled:
		return false, ErrAlreadyTerminal
	case StatusPending:
		r.status = StatusConfirmed
		r.paymentStatus = PaymentSucceeded
		r.expiresAt = nil
		r.updatedAt = now
		return true, nil
	default:
		return false, ErrInvalidStatus
	}
}

// RecordPaymentFailure keeps a pending reservation pending so the payment can
// be retried before expiresAt. Other statuses are left untouched.
func (r *Reservation) RecordPaymentFailure(intentID string, now time.Time) (bool, error) {
	if !r.matchesIntent(intentID) {
		return false, ErrIntentMismatch
	}
	if r.status != StatusPending || r.paymentStatus == PaymentFailed {
		return false, nil
	}
	r.paymentStatus = PaymentFailed
	r.updatedAt = now
	return true, nil
}

func (r *Reservation) Cancel(reason CancelReason, now time.Time) error {
	if !r.status.IsActive() {
		return fmt.Errorf("%w: cannot cancel %s reservation", ErrInvalidTransition, r.status)
	}
	r.status = StatusCancelled
	r.cancelReason = reason
	r.expiresAt = nil
	r.updatedAt = now
	return nil
}

// Expire cancels a pending reservation whose hold has lapsed. Anything else is a no-op.
func (r *Reservation) Expire(now time.Time) (bool, error) {
	if !r.IsExpired(now) {
		return false, nil
	}
	if err := r.Cancel(ReasonExpired, now); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reservation) Complete(now time.Time, loc *time.Location) error {
	if r.status != StatusConfirmed {
		return fmt.Errorf("%w: cannot complete %s reservation", ErrInvalidTransition, r.status)
	}
	if now.Before(r.slot.EndAt(loc)) {
		return fmt.Errorf("%w: slot has not ended yet", ErrInvalidTransition)
	}
	r.status = StatusCompleted
	r.updatedAt = now
	return nil
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.status == StatusPending && r.expiresAt != nil && r.expiresAt.Before(now)
}

func (r *Reservation) matchesIntent(intentID string) bool {
	return r.paymentIntentID != "" && r.paymentIntentID == intentID
}

func (r *Reservation) ID() uuid.UUID                { return r.id }
func (r *Reservation) UserID() uuid.UUID            { return r.userID }
func (r *Reservation) ResourceID() uuid.UUID        { return r.slot.resourceID }
func (r *Reservation) VenueID() uuid.UUID           { return r.venueID }
func (r *Reservation) Slot() Slot                   { return r.slot }
func (r *Reservation) UnitPrice() Money             { return r.unitPrice }
func (r *Reservation) TotalPrice() Money            { return r.totalPrice }
func (r *Reservation) Currency() string             { return r.currency }
func (r *Reservation) Status() Status               { return r.status }
func (r *Reservation) PaymentIntentID() string      { return r.paymentIntentID }
func (r *Reservation) PaymentStatus() PaymentStatus { return r.paymentStatus }
func (r *Reservation) CancelReason() CancelReason   { return r.cancelReason }
func (r *Reservation) CreatedAt() time.Time         { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time         { return r.updatedAt }
func (r *Reservation) ExpiresAt() *time.Time        { return r.expiresAt }
