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

type WebhookOutcome string

const (
	WebhookProcessed       WebhookOutcome = "processed"
	WebhookDuplicate       WebhookOutcome = "duplicate"
	WebhookIgnored         WebhookOutcome = "ignored"
	WebhookAlreadyTerminal WebhookOutcome = "already_terminal"
	WebhookNotFound        WebhookOutcome = "not_found"
	WebhookMismatch        WebhookOutcome = "mismatch"
	WebhookInvalid         WebhookOutcome = "invalid_signature"
	WebhookError           WebhookOutcome = "error"
)

// errIntentNotAttached means the notification raced ahead of the create
// call binding the intent. The gateway retry will find it attached.
var errIntentNotAttached = errs.New("payment intent not attached yet")

//go:generate mockgen -destination=../../../tests/mock/commands/webhook_mock.go -package=commandsmock . WebhookCommands

type WebhookCommands interface {
	// HandleNotification verifies and applies a gateway notification. A nil
	// error means the delivery can be acknowledged.
	HandleNotification(ctx context.Context, payload []byte, signatureHeader string) (WebhookOutcome, error)
}

type webhookCommandsImpl struct {
	*engine
	deduper EventDeduper
}

func NewWebhookCommands(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	index ExpiryIndex,
	deduper EventDeduper,
	clock clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) WebhookCommands {
	return &webhookCommandsImpl{
		engine: &engine{
			uow:     uow,
			gateway: gateway,
			index:   index,
			clock:   clock,
			metrics: m,
			logger:  logger,
		},
		deduper: deduper,
	}
}

func (w *webhookCommandsImpl) HandleNotification(ctx context.Context, payload []byte, signatureHeader string) (WebhookOutcome, error) {
	defer w.observe("webhook", time.Now())

	event, err := w.gateway.VerifyNotification(payload, signatureHeader)
	if err != nil {
		w.metrics.IncWebhook(string(WebhookInvalid))
		return WebhookInvalid, errs.Mark(err, errs.ErrInvalidSignature)
	}

	if event.Kind == payment.EventIgnored {
		w.metrics.IncWebhook(string(WebhookIgnored))
		return WebhookIgnored, nil
	}

	// The dedupe mark only short-circuits events whose effects are already
	// committed. Transitions are idempotent, so concurrent first deliveries
	// or a lost mark only cost a re-check.
	seen, err := w.deduper.Seen(ctx, event.ID)
	if err != nil {
		w.logger.WarnContext(ctx, "event dedupe unavailable",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
	}
	if seen {
		w.metrics.IncWebhook(string(WebhookDuplicate))
		return WebhookDuplicate, nil
	}

	outcome, err := w.apply(ctx, event)
	if err != nil {
		w.metrics.IncWebhook(string(WebhookError))
		return WebhookError, err
	}

	if err := w.deduper.Remember(ctx, event.ID); err != nil {
		w.logger.WarnContext(ctx, "failed to record applied event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
	}
	w.metrics.IncWebhook(string(outcome))
	return outcome, nil
}

func (w *webhookCommandsImpl) apply(ctx context.Context, event payment.Event) (WebhookOutcome, error) {
	now := w.clock.Now()
	var (
		changed       bool
		reservationID uuid.UUID
	)

	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := w.lockTarget(ctx, tx, event)
		if err != nil {
			return err
		}
		reservationID = r.ID()

		if err := reservation.Authorize(reservation.ActionConfirm, r, reservation.SystemActor(), uuid.Nil); err != nil {
			return err
		}

		switch event.Kind {
		case payment.EventIntentSucceeded:
			changed, err = w.confirmLocked(ctx, tx, r, event.IntentID, now)
		case payment.EventIntentFailed:
			_, err = w.recordFailureLocked(ctx, tx, r, event.IntentID, now)
		}
		return err
	})

	attrs := []any{
		slog.String("event_id", event.ID),
		slog.String("kind", string(event.Kind)),
		slog.String("intent_id", event.IntentID),
	}

	switch {
	case err == nil:
	case infra.IsKind(err, infra.KindNotFound):
		w.logger.InfoContext(ctx, "notification for unknown reservation", attrs...)
		return WebhookNotFound, nil
	case errs.Is(err, reservation.ErrAlreadyTerminal):
		if event.Kind == payment.EventIntentSucceeded {
			// Paid after the hold was released; needs a refund upstream.
			w.logger.WarnContext(ctx, "payment succeeded for cancelled reservation",
				append(attrs, slog.String("reservation_id", reservationID.String()))...)
		}
		return WebhookAlreadyTerminal, nil
	case errs.Is(err, errIntentNotAttached):
		return WebhookError, err
	case errs.Is(err, reservation.ErrIntentMismatch):
		w.logger.WarnContext(ctx, "notification intent does not match reservation",
			append(attrs, slog.String("reservation_id", reservationID.String()))...)
		return WebhookMismatch, nil
	default:
		return WebhookError, classify(err)
	}

	if changed {
		w.forgetExpiry(ctx, reservationID)
		w.metrics.IncTransition(reservation.StatusConfirmed.String())
		w.logger.InfoContext(ctx, "reservation confirmed by notification",
			append(attrs, slog.String("reservation_id", reservationID.String()))...)
	}
	return WebhookProcessed, nil
}

// lockTarget finds the reservation by intent id, falling back to the
// correlation id carried in the intent metadata.
func (w *webhookCommandsImpl) lockTarget(ctx context.Context, tx shared.Tx, event payment.Event) (*reservation.Reservation, error) {
	r, err := tx.Reservations().GetByIntentForUpdate(ctx, event.IntentID)
	if err == nil {
		return r, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) || event.ReservationID == uuid.Nil {
		return nil, err
	}

	r, err = tx.Reservations().GetForUpdate(ctx, event.ReservationID)
	if err != nil {
		return nil, err
	}
	if r.PaymentIntentID() == "" && r.Status() == reservation.StatusPending {
		return nil, errs.Wrapf(errIntentNotAttached, "reservation %s", r.ID())
	}
	return r, nil
}
