package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/domain/reservation"
	"court-booking/internal/domain/resource"
	"court-booking/internal/infra"
	"court-booking/internal/pkg/clock"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/pkg/metrics"
	"court-booking/internal/usecase/queries"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	createEndpoint = "POST /api/reservations"
	idempotencyTTL = 24 * time.Hour
)

type CreateReservationInput struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
}

type CreateReservationResult struct {
	Reservation  *queries.ReservationView
	ClientSecret string
	IsReplayed   bool
}

//go:generate mockgen -destination=../../../tests/mock/commands/reservation_mock.go -package=commandsmock . ReservationCommands

type ReservationCommands interface {
	// CreateReservation holds the slot and opens a payment intent. idempotencyKey is optional.
	CreateReservation(ctx context.Context, in CreateReservationInput, userID uuid.UUID, idempotencyKey *uuid.UUID) (*CreateReservationResult, error)
	ConfirmReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID, intentID string) (*TransitionResult, error)
	CancelReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*TransitionResult, error)
	CompleteReservation(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*TransitionResult, error)
	ExpireReservation(ctx context.Context, id uuid.UUID) (bool, error)
}

type reservationCommandsImpl struct {
	*engine
	factory *reservation.Factory
	queries queries.ReservationQueries
	loc     *time.Location
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	factory *reservation.Factory,
	gateway PaymentGateway,
	index ExpiryIndex,
	reservationQueries queries.ReservationQueries,
	clock clock.Clock,
	loc *time.Location,
	m *metrics.Metrics,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		engine: &engine{
			uow:     uow,
			gateway: gateway,
			index:   index,
			clock:   clock,
			metrics: m,
			logger:  logger,
		},
		factory: factory,
		queries: reservationQueries,
		loc:     loc,
	}
}

func (c *reservationCommandsImpl) CreateReservation(
	ctx context.Context,
	in CreateReservationInput,
	userID uuid.UUID,
	idempotencyKey *uuid.UUID,
) (*CreateReservationResult, error) {
	defer c.observe("create", time.Now())

	slot, err := parseSlot(in)
	if err != nil {
		return nil, err
	}

	res, err := c.loadResource(ctx, in.ResourceID)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != nil {
		replayed, err := c.claimIdempotencyKey(ctx, *idempotencyKey, userID, requestHash(in))
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}

	r, intent, err := c.holdSlot(ctx, res, userID, slot, idempotencyKey)
	if err != nil {
		if idempotencyKey != nil {
			c.releaseIdempotencyKey(ctx, *idempotencyKey, userID)
		}
		return nil, err
	}

	// The hold and the completed idempotency record are committed. From here
	// on a failure must leave both in place so a retry with the same key
	// replays instead of colliding with its own hold.
	if expiresAt := r.ExpiresAt(); expiresAt != nil {
		if err := c.index.Add(ctx, r.ID(), *expiresAt); err != nil {
			c.logger.WarnContext(ctx, "failed to index reservation expiry",
				slog.String("reservation_id", r.ID().String()),
				slog.String("error", err.Error()))
		}
	}
	c.metrics.IncTransition(reservation.StatusPending.String())

	c.logger.InfoContext(ctx, "reservation created",
		slog.String("reservation_id", r.ID().String()),
		slog.String("resource_id", res.ID().String()),
		slog.String("slot", slot.String()))

	view, err := c.queries.GetByIDSystem(ctx, r.ID())
	if err != nil {
		return nil, err
	}

	return &CreateReservationResult{
		Reservation:  view,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// holdSlot reserves the slot and binds a fresh payment intent to it. On error
// nothing it wrote stays active: the hold is released and the intent cancelled.
func (c *reservationCommandsImpl) holdSlot(
	ctx context.Context,
	res *resource.Resource,
	userID uuid.UUID,
	slot reservation.Slot,
	idempotencyKey *uuid.UUID,
) (*reservation.Reservation, payment.Intent, error) {
	r, err := c.factory.CreateReservation(res, userID, slot)
	if err != nil {
		return nil, payment.Intent{}, invalidSlot(err)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().TryReserve(ctx, r)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			c.metrics.IncConflict()
			return nil, payment.Intent{}, errs.Mark(err, errs.ErrReservationConflict)
		}
		return nil, payment.Intent{}, classify(err)
	}

	intent, err := c.gateway.CreateIntent(ctx, r.TotalPrice().Amount(), r.Currency(), r.ID())
	if err != nil {
		c.metrics.IncGatewayError("create")
		c.compensate(ctx, r.ID())
		return nil, payment.Intent{}, errs.Mark(errs.Wrap(err, "failed to create payment intent"), errs.ErrGateway)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, err := tx.Reservations().GetForUpdate(ctx, r.ID())
		if err != nil {
			return err
		}
		if err := locked.AttachIntent(intent.ID, c.clock.Now()); err != nil {
			return err
		}
		if err := tx.Reservations().Save(ctx, locked); err != nil {
			return err
		}
		if idempotencyKey != nil {
			return tx.Idempotency().Complete(ctx, *idempotencyKey, userID, r.ID())
		}
		return nil
	})
	if err != nil {
		// A hold without an intent can never be confirmed.
		c.cancelIntent(ctx, r.ID(), intent.ID)
		c.compensate(ctx, r.ID())
		return nil, payment.Intent{}, classify(err)
	}

	return r, intent, nil
}

// compensate releases a hold that has no usable intent. If it fails the hold
// still lapses through the reaper.
func (c *reservationCommandsImpl) compensate(ctx context.Context, id uuid.UUID) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Release(ctx, id, reservation.ReasonPaymentUnavailable, c.clock.Now())
		return err
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to release reservation after gateway failure",
			slog.String("reservation_id", id.String()),
			slog.String("error", err.Error()))
		return
	}
	c.metrics.IncTransition(reservation.StatusCancelled.String())
}

// claimIdempotencyKey returns a replayed result when the key already
// completed for the same request.
func (c *reservationCommandsImpl) claimIdempotencyKey(ctx context.Context, key, userID uuid.UUID, hash string) (*CreateReservationResult, error) {
	now := c.clock.Now()

	var existing *shared.IdempotencyRecord
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, err := tx.Idempotency().TryInsert(ctx, key, userID, createEndpoint, hash, now.Add(idempotencyTTL), now)
		if err != nil || inserted {
			return err
		}
		existing, err = tx.Idempotency().Get(ctx, key, userID)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	if existing == nil {
		return nil, nil
	}

	if existing.RequestHash != hash {
		return nil, errs.Mark(errs.Newf("idempotency key %s reused", key), errs.ErrIdempotencyKeyReused)
	}

	switch existing.Status {
	case shared.IdempotencyCompleted:
		if existing.ResultReservationID == nil {
			return nil, errs.Mark(errs.New("completed request missing result reservation ID"), errs.ErrIdempotencyCheckFailed)
		}
		return c.replay(ctx, *existing.ResultReservationID)
	case shared.IdempotencyProcessing:
		return nil, errs.Mark(errs.Newf("idempotency key %s in progress", key), errs.ErrIdempotencyInProgress)
	default:
		return nil, errs.Mark(errs.Newf("invalid idempotency status %q", existing.Status), errs.ErrIdempotencyCheckFailed)
	}
}

func (c *reservationCommandsImpl) replay(ctx context.Context, id uuid.UUID) (*CreateReservationResult, error) {
	view, err := c.queries.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &CreateReservationResult{Reservation: view, IsReplayed: true}
	if view.PaymentIntentID != "" && view.Status == reservation.StatusPending.String() {
		intent, err := c.gateway.RetrieveIntent(ctx, view.PaymentIntentID)
		if err != nil {
			c.metrics.IncGatewayError("retrieve")
			return nil, errs.Mark(err, errs.ErrGateway)
		}
		result.ClientSecret = intent.ClientSecret
	}
	return result, nil
}

func (c *reservationCommandsImpl) releaseIdempotencyKey(ctx context.Context, key, userID uuid.UUID) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Delete(ctx, key, userID)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to release idempotency key",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}

func (c *reservationCommandsImpl) loadResource(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	snapshot, err := c.uow.CommandReads().ResourceByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrResourceNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return resource.NewResource(
		snapshot.ID,
		snapshot.VenueID,
		snapshot.OwnerID,
		snapshot.Name,
		snapshot.UnitPrice,
		snapshot.Currency,
	)
}

func parseSlot(in CreateReservationInput) (reservation.Slot, error) {
	date, err := reservation.ParseDate(in.Date)
	if err != nil {
		return reservation.Slot{}, invalidSlot(err)
	}
	start, err := reservation.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return reservation.Slot{}, invalidSlot(err)
	}
	end, err := reservation.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return reservation.Slot{}, invalidSlot(err)
	}
	slot, err := reservation.NewSlot(in.ResourceID, date, start, end)
	if err != nil {
		return reservation.Slot{}, invalidSlot(err)
	}
	return slot, nil
}

// invalidSlot surfaces the domain's validation message to the caller.
func invalidSlot(err error) error {
	return errs.WithHint(errs.Mark(err, errs.ErrInvalidSlot), err.Error())
}

func requestHash(in CreateReservationInput) string {
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
