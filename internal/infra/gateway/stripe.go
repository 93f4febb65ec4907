package gateway

import (
	"context"
	"encoding/json"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	metadataReservationID = "reservation_id"

	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

// intentAPI is the subset of the Stripe PaymentIntent client the adapter uses.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type StripeGateway struct {
	intents       intentAPI
	webhookSecret string
	tolerance     time.Duration
}

func NewStripeGateway(secretKey, webhookSecret string, tolerance time.Duration) *StripeGateway {
	client := &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return newStripeGateway(client, webhookSecret, tolerance)
}

func newStripeGateway(intents intentAPI, webhookSecret string, tolerance time.Duration) *StripeGateway {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &StripeGateway{
		intents:       intents,
		webhookSecret: webhookSecret,
		tolerance:     tolerance,
	}
}

// CreateIntent is idempotent per correlation id at the gateway.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, correlationID uuid.UUID) (payment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataReservationID, correlationID.String())
	params.SetIdempotencyKey("reservation-" + correlationID.String())

	pi, err := g.intents.New(params)
	if err != nil {
		return payment.Intent{}, errs.Wrap(err, "stripe: create payment intent")
	}

	return toIntent(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (payment.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(intentID, params)
	if err != nil {
		return payment.Intent{}, errs.Wrapf(err, "stripe: retrieve payment intent %s", intentID)
	}

	return toIntent(pi), nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx

	if _, err := g.intents.Cancel(intentID, params); err != nil {
		return errs.Wrapf(err, "stripe: cancel payment intent %s", intentID)
	}
	return nil
}

func (g *StripeGateway) VerifyNotification(payload []byte, signatureHeader string) (payment.Event, error) {
	return parseSignedEvent(payload, signatureHeader, g.webhookSecret, g.tolerance)
}

// parseSignedEvent checks the t=...,v1=... signature and maps payment intent
// events. Anything that fails verification is reported as ErrInvalidSignature.
func parseSignedEvent(payload []byte, signatureHeader, secret string, tolerance time.Duration) (payment.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return payment.Event{}, errs.Mark(errs.Wrap(err, "stripe: verify notification"), errs.ErrInvalidSignature)
	}

	out := payment.Event{ID: event.ID, Kind: payment.EventIgnored}

	var kind payment.EventKind
	switch string(event.Type) {
	case eventIntentSucceeded:
		kind = payment.EventIntentSucceeded
	case eventIntentFailed:
		kind = payment.EventIntentFailed
	default:
		return out, nil
	}

	if event.Data == nil {
		return payment.Event{}, errs.Mark(errs.New("stripe: event without data"), errs.ErrInvalidSignature)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return payment.Event{}, errs.Mark(errs.Wrap(err, "stripe: decode payment intent"), errs.ErrInvalidSignature)
	}

	out.Kind = kind
	out.IntentID = pi.ID
	if raw, ok := pi.Metadata[metadataReservationID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.ReservationID = id
		}
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) payment.Intent {
	return payment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi),
	}
}

func mapIntentStatus(pi *stripe.PaymentIntent) payment.IntentStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return payment.IntentFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return payment.IntentFailed
		}
		return payment.IntentPending
	default:
		return payment.IntentPending
	}
}
