package commands

import (
	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/pkg/errs"
)

var useCaseSentinels = []error{
	errs.ErrResourceNotFound,
	errs.ErrReservationNotFound,
	errs.ErrReservationConflict,
	errs.ErrInvalidSlot,
	errs.ErrForbidden,
	errs.ErrInvalidTransition,
	errs.ErrAlreadyTerminal,
	errs.ErrIntentMismatch,
	errs.ErrPaymentNotSucceeded,
	errs.ErrGateway,
	errs.ErrInvalidSignature,
	errs.ErrIdempotencyKeyReused,
	errs.ErrIdempotencyInProgress,
	errs.ErrIdempotencyCheckFailed,
	errs.ErrDatabaseOperationFailed,
}

// classify attaches the use-case sentinel matching a domain or repository
// error. Errors that already carry one pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, s := range useCaseSentinels {
		if errs.Is(err, s) {
			return err
		}
	}

	switch {
	case errs.Is(err, reservation.ErrIntentMismatch):
		return errs.Mark(err, errs.ErrIntentMismatch)
	case errs.Is(err, reservation.ErrAlreadyTerminal):
		return errs.Mark(err, errs.ErrAlreadyTerminal)
	case errs.Is(err, reservation.ErrInvalidTransition), errs.Is(err, reservation.ErrIntentAlreadySet):
		return errs.Mark(err, errs.ErrInvalidTransition)
	case errs.Is(err, reservation.ErrForbidden):
		return errs.Mark(err, errs.ErrForbidden)
	case errs.Is(err, reservation.ErrInvalidSlot), errs.Is(err, reservation.ErrNegativePrice):
		return errs.Mark(err, errs.ErrInvalidSlot)
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrReservationNotFound)
	case infra.IsKind(err, infra.KindConflict):
		return errs.Mark(err, errs.ErrReservationConflict)
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}
