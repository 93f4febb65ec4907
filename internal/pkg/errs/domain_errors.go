package errs

import "errors"

// Use-case level sentinels shared by commands, queries and handlers.
// Attach them with Mark so the underlying cause stays inspectable.
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationConflict = errors.New("reservation conflict")
	ErrInvalidSlot         = errors.New("invalid slot")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrAlreadyTerminal     = errors.New("reservation already terminal")
	ErrIntentMismatch      = errors.New("payment intent mismatch")
	ErrPaymentNotSucceeded = errors.New("payment not succeeded")

	// Payment gateway errors
	ErrGateway          = errors.New("payment gateway error")
	ErrInvalidSignature = errors.New("invalid notification signature")

	// Idempotency errors
	ErrIdempotencyKeyReused   = errors.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
