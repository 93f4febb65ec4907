package commands

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/pkg/clock"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/pkg/metrics"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type TransitionResult struct {
	ReservationID uuid.UUID
	Status        reservation.Status
	// Changed is false when the call found the reservation already in the target state.
	Changed bool
}

// engine holds the transition steps shared by the client-facing commands,
// the webhook handler and the reaper.
type engine struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	index   ExpiryIndex
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// confirmLocked applies a succeeded payment to r, which the caller holds
// FOR UPDATE inside tx.
func (e *engine) confirmLocked(ctx context.Context, tx shared.Tx, r *reservation.Reservation, intentID string, now time.Time) (bool, error) {
	changed, err := r.Confirm(intentID, now)
	if err != nil || !changed {
		return false, err
	}
	if err := tx.Reservations().Save(ctx, r); err != nil {
		return false, err
	}
	e.enqueue(ctx, tx, shared.NotificationKindConfirmed, r, now)
	return true, nil
}

func (e *engine) recordFailureLocked(ctx context.Context, tx shared.Tx, r *reservation.Reservation, intentID string, now time.Time) (bool, error) {
	changed, err := r.RecordPaymentFailure(intentID, now)
	if err != nil || !changed {
		return false, err
	}
	if err := tx.Reservations().Save(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

// enqueue writes the outbox row in a savepoint. A failure is logged and
// rolled back without affecting the caller's transaction.
func (e *engine) enqueue(ctx context.Context, tx shared.Tx, kind string, r *reservation.Reservation, now time.Time) {
	job, err := shared.NewReservationNotification(kind, r, now)
	if err == nil {
		err = tx.Savepoint(ctx, func(ctx context.Context, sp shared.Tx) error {
			return sp.Notifications().Enqueue(ctx, job)
		})
	}
	if err != nil {
		e.logger.WarnContext(ctx, "failed to enqueue notification",
			slog.String("kind", kind),
			slog.String("reservation_id", r.ID().String()),
			slog.String("error", err.Error()))
	}
}

func (e *engine) forgetExpiry(ctx context.Context, id uuid.UUID) {
	if err := e.index.Remove(ctx, id); err != nil {
		e.logger.WarnContext(ctx, "failed to remove reservation from expiry index",
			slog.String("reservation_id", id.String()),
			slog.String("error", err.Error()))
	}
}

// cancelIntent stops a stale intent from being paid. Best effort.
func (e *engine) cancelIntent(ctx context.Context, reservationID uuid.UUID, intentID string) {
	if intentID == "" {
		return
	}
	if err := e.gateway.CancelIntent(ctx, intentID); err != nil {
		e.metrics.IncGatewayError("cancel")
		e.logger.WarnContext(ctx, "failed to cancel payment intent",
			slog.String("reservation_id", reservationID.String()),
			slog.String("intent_id", intentID),
			slog.String("error", err.Error()))
	}
}

func (e *engine) observe(command string, started time.Time) {
	e.metrics.ObserveCommand(command, time.Since(started).Seconds())
}

func (c *reservationCommandsImpl) ConfirmReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID, intentID string) (*TransitionResult, error) {
	defer c.observe("confirm", time.Now())

	view, err := c.queries.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	current := reservation.Reconstruct(reservation.Record{
		ID:              view.ID,
		UserID:          view.UserID,
		Status:          reservation.Status(view.Status),
		PaymentIntentID: view.PaymentIntentID,
	})
	if err := reservation.Authorize(reservation.ActionConfirm, current, actor, view.ResourceOwnerID); err != nil {
		return nil, errs.Mark(err, errs.ErrForbidden)
	}
	if view.PaymentIntentID == "" || view.PaymentIntentID != intentID {
		return nil, errs.Mark(errs.Newf("intent %q does not belong to reservation %s", intentID, id), errs.ErrIntentMismatch)
	}

	switch current.Status() {
	case reservation.StatusConfirmed, reservation.StatusCompleted:
		return &TransitionResult{ReservationID: id, Status: current.Status()}, nil
	case reservation.StatusCancelled:
		return nil, errs.Mark(errs.Newf("reservation %s is cancelled", id), errs.ErrAlreadyTerminal)
	}

	intent, err := c.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		c.metrics.IncGatewayError("retrieve")
		return nil, errs.Mark(err, errs.ErrGateway)
	}

	now := c.clock.Now()
	var result *TransitionResult

	switch intent.Status {
	case payment.IntentSucceeded:
		err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			r, err := tx.Reservations().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			changed, err := c.confirmLocked(ctx, tx, r, intentID, now)
			if err != nil {
				return err
			}
			result = &TransitionResult{ReservationID: id, Status: r.Status(), Changed: changed}
			return nil
		})
		if err != nil {
			return nil, classify(err)
		}
		if result.Changed {
			c.forgetExpiry(ctx, id)
			c.metrics.IncTransition(reservation.StatusConfirmed.String())
		}
		return result, nil

	case payment.IntentFailed:
		err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			r, err := tx.Reservations().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			// A notification for a later successful attempt may have
			// confirmed the row since the gateway was asked.
			if s := r.Status(); s == reservation.StatusConfirmed || s == reservation.StatusCompleted {
				result = &TransitionResult{ReservationID: id, Status: r.Status()}
				return nil
			}
			_, err = c.recordFailureLocked(ctx, tx, r, intentID, now)
			return err
		})
		if err != nil {
			return nil, classify(err)
		}
		if result != nil {
			return result, nil
		}
		return nil, errs.Mark(errs.Newf("payment for reservation %s failed", id), errs.ErrPaymentNotSucceeded)

	default:
		return nil, errs.Mark(errs.Newf("payment for reservation %s is still pending", id), errs.ErrPaymentNotSucceeded)
	}
}

func (c *reservationCommandsImpl) CancelReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*TransitionResult, error) {
	defer c.observe("cancel", time.Now())

	now := c.clock.Now()
	var (
		wasPending bool
		intentID   string
		reason     reservation.CancelReason
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		owner, err := c.resourceOwner(ctx, tx, r.ResourceID())
		if err != nil {
			return err
		}
		if err := reservation.Authorize(reservation.ActionCancel, r, actor, owner); err != nil {
			return err
		}

		wasPending = r.Status() == reservation.StatusPending
		intentID = r.PaymentIntentID()
		reason = reservation.CancelReasonFor(r, actor)

		if err := r.Cancel(reason, now); err != nil {
			return err
		}
		released, err := tx.Reservations().Release(ctx, id, reason, now)
		if err != nil {
			return err
		}
		if !released {
			return errs.Mark(errs.Newf("reservation %s was released concurrently", id), errs.ErrInvalidTransition)
		}

		c.enqueue(ctx, tx, shared.NotificationKindCancelled, r, now)
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if wasPending {
		c.forgetExpiry(ctx, id)
		c.cancelIntent(ctx, id, intentID)
	}
	c.metrics.IncTransition(reservation.StatusCancelled.String())
	c.logger.InfoContext(ctx, "reservation cancelled",
		slog.String("reservation_id", id.String()),
		slog.String("reason", reason.String()))

	return &TransitionResult{ReservationID: id, Status: reservation.StatusCancelled, Changed: true}, nil
}

func (c *reservationCommandsImpl) CompleteReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*TransitionResult, error) {
	defer c.observe("complete", time.Now())

	now := c.clock.Now()
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		owner, err := c.resourceOwner(ctx, tx, r.ResourceID())
		if err != nil {
			return err
		}
		if err := reservation.Authorize(reservation.ActionComplete, r, actor, owner); err != nil {
			return err
		}
		if err := r.Complete(now, c.loc); err != nil {
			return err
		}
		return tx.Reservations().Save(ctx, r)
	})
	if err != nil {
		return nil, classify(err)
	}

	c.metrics.IncTransition(reservation.StatusCompleted.String())
	return &TransitionResult{ReservationID: id, Status: reservation.StatusCompleted, Changed: true}, nil
}

// ExpireReservation cancels a lapsed pending hold as the system actor. It
// reports false when the reservation no longer needs expiring.
func (c *reservationCommandsImpl) ExpireReservation(ctx context.Context, id uuid.UUID) (bool, error) {
	now := c.clock.Now()
	var (
		expired  bool
		settled  bool
		intentID string
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := reservation.Authorize(reservation.ActionExpire, r, reservation.SystemActor(), uuid.Nil); err != nil {
			return err
		}

		settled = r.Status() != reservation.StatusPending
		changed, err := r.Expire(now)
		if err != nil || !changed {
			return err
		}

		released, err := tx.Reservations().Release(ctx, id, reservation.ReasonExpired, now)
		if err != nil {
			return err
		}
		if !released {
			settled = true
			return nil
		}

		expired = true
		intentID = r.PaymentIntentID()
		c.enqueue(ctx, tx, shared.NotificationKindExpired, r, now)
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.forgetExpiry(ctx, id)
			return false, nil
		}
		return false, classify(err)
	}

	if expired || settled {
		c.forgetExpiry(ctx, id)
	}
	if expired {
		c.cancelIntent(ctx, id, intentID)
		c.metrics.IncExpired()
		c.metrics.IncTransition(reservation.StatusCancelled.String())
	}
	return expired, nil
}

func (c *reservationCommandsImpl) resourceOwner(ctx context.Context, tx shared.Tx, resourceID uuid.UUID) (uuid.UUID, error) {
	snapshot, err := tx.Reads().ResourceByID(ctx, resourceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return uuid.Nil, errs.Mark(err, errs.ErrResourceNotFound)
		}
		return uuid.Nil, err
	}
	return snapshot.OwnerID, nil
}
