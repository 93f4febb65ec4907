//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPending(t *testing.T) (*reservation.Reservation, *builder.ReservationBuilder) {
	t.Helper()
	b := builder.NewReservationBuilder()
	r, err := b.BuildDomain()
	require.NoError(t, err)
	return r, b
}

func TestFactory(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		r, b := newPending(t)

		assert.NotEqual(t, uuid.Nil, r.ID())
		assert.Equal(t, b.UserID, r.UserID())
		assert.Equal(t, b.ResourceID, r.ResourceID())
		assert.Equal(t, b.VenueID, r.VenueID())
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.Equal(t, reservation.PaymentPending, r.PaymentStatus())
		assert.Equal(t, int64(500), r.UnitPrice().Amount())
		assert.Equal(t, int64(750), r.TotalPrice().Amount())
		assert.Equal(t, "jpy", r.Currency())
		assert.Empty(t, r.PaymentIntentID())
		require.NotNil(t, r.ExpiresAt())
		assert.Equal(t, b.Now.Add(15*time.Minute), *r.ExpiresAt())
		assert.Equal(t, r.CreatedAt(), r.UpdatedAt())
	})

	t.Run("slot for another resource", func(t *testing.T) {
		b := builder.NewReservationBuilder()
		res, err := b.BuildResource()
		require.NoError(t, err)
		other := builder.NewReservationBuilder()
		s, err := other.BuildSlot()
		require.NoError(t, err)

		factory := reservation.NewFactory(nil, reservation.NewHourlyPriceCalculator(), 0)
		_, err = factory.CreateReservation(res, b.UserID, s)
		assert.ErrorIs(t, err, reservation.ErrInvalidSlot)
	})

	t.Run("default hold timeout", func(t *testing.T) {
		factory := reservation.NewFactory(nil, reservation.NewHourlyPriceCalculator(), 0)
		assert.Equal(t, reservation.DefaultHoldTimeout, factory.HoldTimeout)
	})
}

func TestReservationLifecycle(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 5, 0, 0, time.UTC)

	t.Run("attach intent once", func(t *testing.T) {
		r, _ := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))
		require.NoError(t, r.AttachIntent("pi_1", now), "re-attaching the same intent is a no-op")
		assert.ErrorIs(t, r.AttachIntent("pi_2", now), reservation.ErrIntentAlreadySet)
		assert.ErrorIs(t, r.AttachIntent("", now), reservation.ErrIntentMismatch)
		assert.Equal(t, "pi_1", r.PaymentIntentID())
	})

	t.Run("confirm is idempotent", func(t *testing.T) {
		r, _ := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))

		changed, err := r.Confirm("pi_1", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
		assert.Equal(t, reservation.PaymentSucceeded, r.PaymentStatus())
		assert.Nil(t, r.ExpiresAt())

		changed, err = r.Confirm("pi_1", now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, now, r.UpdatedAt())
	})

	t.Run("confirm rejects another intent", func(t *testing.T) {
		r, _ := newPending(t)
		_, err := r.Confirm("pi_1", now)
		assert.ErrorIs(t, err, reservation.ErrIntentMismatch, "no intent attached")

		require.NoError(t, r.AttachIntent("pi_1", now))
		_, err = r.Confirm("pi_2", now)
		assert.ErrorIs(t, err, reservation.ErrIntentMismatch)
		assert.Equal(t, reservation.StatusPending, r.Status())
	})

	t.Run("confirm after cancel is terminal", func(t *testing.T) {
		r, _ := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))
		require.NoError(t, r.Cancel(reservation.ReasonUserCancelled, now))

		_, err := r.Confirm("pi_1", now)
		assert.ErrorIs(t, err, reservation.ErrAlreadyTerminal)
		assert.Equal(t, reservation.StatusCancelled, r.Status())
		assert.Equal(t, reservation.ReasonUserCancelled, r.CancelReason())
	})

	t.Run("payment failure keeps the hold", func(t *testing.T) {
		r, _ := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))

		changed, err := r.RecordPaymentFailure("pi_1", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.Equal(t, reservation.PaymentFailed, r.PaymentStatus())
		assert.NotNil(t, r.ExpiresAt())

		changed, err = r.RecordPaymentFailure("pi_1", now)
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = r.Confirm("pi_1", now)
		require.NoError(t, err)
		assert.True(t, changed, "a retried payment can still confirm")
	})

	t.Run("cancel only active reservations", func(t *testing.T) {
		r, _ := newPending(t)
		require.NoError(t, r.Cancel(reservation.ReasonAdminCancelled, now))
		assert.Nil(t, r.ExpiresAt())
		assert.ErrorIs(t, r.Cancel(reservation.ReasonUserCancelled, now), reservation.ErrInvalidTransition)
	})

	t.Run("expire", func(t *testing.T) {
		r, b := newPending(t)
		deadline := b.Now.Add(b.HoldTimeout)

		expired, err := r.Expire(deadline)
		require.NoError(t, err)
		assert.False(t, expired, "deadline itself is not past")

		expired, err = r.Expire(deadline.Add(time.Second))
		require.NoError(t, err)
		assert.True(t, expired)
		assert.Equal(t, reservation.ReasonExpired, r.CancelReason())

		expired, err = r.Expire(deadline.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, expired)
	})

	t.Run("confirmed never expires", func(t *testing.T) {
		r, b := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))
		_, err := r.Confirm("pi_1", now)
		require.NoError(t, err)

		expired, err := r.Expire(b.Now.Add(24 * time.Hour))
		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
	})

	t.Run("complete after slot end", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		r, _ := newPending(t)
		require.NoError(t, r.AttachIntent("pi_1", now))
		assert.ErrorIs(t, r.Complete(now, loc), reservation.ErrInvalidTransition)

		_, err = r.Confirm("pi_1", now)
		require.NoError(t, err)

		end := time.Date(2026, 5, 2, 11, 30, 0, 0, loc)
		assert.ErrorIs(t, r.Complete(end.Add(-time.Minute), loc), reservation.ErrInvalidTransition)
		require.NoError(t, r.Complete(end, loc))
		assert.Equal(t, reservation.StatusCompleted, r.Status())
		assert.True(t, r.Status().IsTerminal())
	})
}

func TestReconstructRoundTrip(t *testing.T) {
	r, _ := newPending(t)
	require.NoError(t, r.AttachIntent("pi_1", time.Now()))

	again := reservation.Reconstruct(r.Record())
	assert.Equal(t, r.Record(), again.Record())
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "cancelled", "completed"} {
		status, err := reservation.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, status.String())
	}
	_, err := reservation.ParseStatus("expired")
	assert.ErrorIs(t, err, reservation.ErrInvalidStatus)
}
