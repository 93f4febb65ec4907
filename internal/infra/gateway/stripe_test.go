//go:build unit

package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type stubIntentAPI struct {
	newParams   *stripe.PaymentIntentParams
	cancelledID string
	intent      *stripe.PaymentIntent
	err         error
}

func (s *stubIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.newParams = params
	return s.intent, s.err
}

func (s *stubIntentAPI) Get(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return s.intent, s.err
}

func (s *stubIntentAPI) Cancel(id string, _ *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	s.cancelledID = id
	return s.intent, s.err
}

const testSecret = "whsec_test"

func TestStripeGateway_CreateIntent(t *testing.T) {
	api := &stubIntentAPI{intent: &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}}
	g := newStripeGateway(api, testSecret, time.Minute)
	correlationID := uuid.New()

	intent, err := g.CreateIntent(context.Background(), 4000, "jpy", correlationID)

	require.NoError(t, err)
	assert.Equal(t, payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: payment.IntentPending}, intent)
	require.NotNil(t, api.newParams)
	assert.Equal(t, int64(4000), *api.newParams.Amount)
	assert.Equal(t, "jpy", *api.newParams.Currency)
	assert.Equal(t, correlationID.String(), api.newParams.Metadata[metadataReservationID])
	assert.Equal(t, "reservation-"+correlationID.String(), *api.newParams.IdempotencyKey)
}

func TestStripeGateway_CreateIntentError(t *testing.T) {
	api := &stubIntentAPI{err: errors.New("connection reset")}
	g := newStripeGateway(api, testSecret, time.Minute)

	_, err := g.CreateIntent(context.Background(), 4000, "jpy", uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create payment intent")
}

func TestStripeGateway_CancelIntent(t *testing.T) {
	api := &stubIntentAPI{intent: &stripe.PaymentIntent{ID: "pi_9"}}
	g := newStripeGateway(api, testSecret, time.Minute)

	require.NoError(t, g.CancelIntent(context.Background(), "pi_9"))
	assert.Equal(t, "pi_9", api.cancelledID)
}

func TestMapIntentStatus(t *testing.T) {
	tests := []struct {
		name string
		pi   *stripe.PaymentIntent
		want payment.IntentStatus
	}{
		{name: "succeeded", pi: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusSucceeded}, want: payment.IntentSucceeded},
		{name: "canceled", pi: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusCanceled}, want: payment.IntentFailed},
		{name: "awaiting method", pi: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusRequiresPaymentMethod}, want: payment.IntentPending},
		{
			name: "declined",
			pi: &stripe.PaymentIntent{
				Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
				LastPaymentError: &stripe.Error{Code: stripe.ErrorCodeCardDeclined},
			},
			want: payment.IntentFailed,
		},
		{name: "processing", pi: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusProcessing}, want: payment.IntentPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapIntentStatus(tt.pi))
		})
	}
}

func TestVerifyNotification(t *testing.T) {
	g := newStripeGateway(&stubIntentAPI{}, testSecret, 5*time.Minute)
	reservationID := uuid.New()

	succeeded, err := BuildEventPayload("evt_1", "pi_1", payment.EventIntentSucceeded, reservationID, 4000, "jpy")
	require.NoError(t, err)
	failed, err := BuildEventPayload("evt_2", "pi_1", payment.EventIntentFailed, uuid.Nil, 4000, "jpy")
	require.NoError(t, err)
	other, err := BuildEventPayload("evt_3", "pi_1", payment.EventIgnored, uuid.Nil, 4000, "jpy")
	require.NoError(t, err)

	now := time.Now()

	tests := []struct {
		name    string
		payload []byte
		header  string
		want    payment.Event
		wantErr bool
	}{
		{
			name:    "succeeded event",
			payload: succeeded,
			header:  SignPayload(succeeded, testSecret, now),
			want:    payment.Event{ID: "evt_1", Kind: payment.EventIntentSucceeded, IntentID: "pi_1", ReservationID: reservationID},
		},
		{
			name:    "failed event without metadata",
			payload: failed,
			header:  SignPayload(failed, testSecret, now),
			want:    payment.Event{ID: "evt_2", Kind: payment.EventIntentFailed, IntentID: "pi_1"},
		},
		{
			name:    "unrelated event type",
			payload: other,
			header:  SignPayload(other, testSecret, now),
			want:    payment.Event{ID: "evt_3", Kind: payment.EventIgnored},
		},
		{
			name:    "tampered body",
			payload: append([]byte{}, succeeded[:len(succeeded)-1]...),
			header:  SignPayload(succeeded, testSecret, now),
			wantErr: true,
		},
		{
			name:    "wrong secret",
			payload: succeeded,
			header:  SignPayload(succeeded, "whsec_other", now),
			wantErr: true,
		},
		{
			name:    "stale timestamp",
			payload: succeeded,
			header:  SignPayload(succeeded, testSecret, now.Add(-time.Hour)),
			wantErr: true,
		},
		{
			name:    "missing header",
			payload: succeeded,
			header:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.VerifyNotification(tt.payload, tt.header)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrInvalidSignature))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
