//go:build unit

package gateway

import (
	"context"
	"testing"
	"time"

	"court-booking/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeGateway_Lifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewFakeGateway(testSecret, time.Minute)
	reservationID := uuid.New()

	intent, err := g.CreateIntent(ctx, 3000, "jpy", reservationID)
	require.NoError(t, err)
	assert.Equal(t, payment.IntentPending, intent.Status)

	again, err := g.CreateIntent(ctx, 3000, "jpy", reservationID)
	require.NoError(t, err)
	assert.Equal(t, intent.ID, again.ID, "same correlation id reuses the intent")

	require.NoError(t, g.Succeed(intent.ID))
	got, err := g.RetrieveIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.IntentSucceeded, got.Status)

	assert.Error(t, g.CancelIntent(ctx, intent.ID), "succeeded intents cannot be cancelled")
}

func TestFakeGateway_FailNextCreate(t *testing.T) {
	ctx := context.Background()
	g := NewFakeGateway(testSecret, time.Minute)
	g.FailNextCreate()

	_, err := g.CreateIntent(ctx, 3000, "jpy", uuid.New())
	require.Error(t, err)

	_, err = g.CreateIntent(ctx, 3000, "jpy", uuid.New())
	require.NoError(t, err)
}

func TestFakeGateway_Cancel(t *testing.T) {
	ctx := context.Background()
	g := NewFakeGateway(testSecret, time.Minute)

	intent, err := g.CreateIntent(ctx, 3000, "jpy", uuid.New())
	require.NoError(t, err)

	require.NoError(t, g.CancelIntent(ctx, intent.ID))
	assert.True(t, g.Cancelled(intent.ID))

	got, err := g.RetrieveIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.IntentFailed, got.Status)
}

func TestFakeGateway_SignedEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := NewFakeGateway(testSecret, time.Minute)
	reservationID := uuid.New()

	intent, err := g.CreateIntent(ctx, 3000, "jpy", reservationID)
	require.NoError(t, err)

	payload, header, err := g.SignedEvent(intent.ID, payment.EventIntentSucceeded)
	require.NoError(t, err)

	event, err := g.VerifyNotification(payload, header)
	require.NoError(t, err)
	assert.Equal(t, payment.EventIntentSucceeded, event.Kind)
	assert.Equal(t, intent.ID, event.IntentID)
	assert.Equal(t, reservationID, event.ReservationID)
	assert.NotEmpty(t, event.ID)

	_, _, err = g.SignedEvent("pi_missing", payment.EventIntentSucceeded)
	assert.Error(t, err)
}
