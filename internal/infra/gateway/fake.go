package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79/webhook"
)

// FakeGateway keeps intents in memory and signs notifications the same way
// the real gateway does, so VerifyNotification runs the production parser.
type FakeGateway struct {
	mu            sync.Mutex
	intents       map[string]*fakeIntent
	seq           int
	failNext      bool
	webhookSecret string
	tolerance     time.Duration
	now           func() time.Time
}

type fakeIntent struct {
	intent        payment.Intent
	amount        int64
	currency      string
	correlationID uuid.UUID
	cancelled     bool
}

func NewFakeGateway(webhookSecret string, tolerance time.Duration) *FakeGateway {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &FakeGateway{
		intents:       make(map[string]*fakeIntent),
		webhookSecret: webhookSecret,
		tolerance:     tolerance,
		now:           time.Now,
	}
}

// FailNextCreate makes the next CreateIntent call return an error.
func (g *FakeGateway) FailNextCreate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext = true
}

func (g *FakeGateway) CreateIntent(ctx context.Context, amount int64, currency string, correlationID uuid.UUID) (payment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return payment.Intent{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failNext {
		g.failNext = false
		return payment.Intent{}, errs.New("fake gateway: create intent unavailable")
	}

	// Same correlation id returns the same intent, like an idempotency key.
	for _, fi := range g.intents {
		if fi.correlationID == correlationID {
			return fi.intent, nil
		}
	}

	g.seq++
	id := fmt.Sprintf("pi_fake_%d", g.seq)
	fi := &fakeIntent{
		intent: payment.Intent{
			ID:           id,
			ClientSecret: id + "_secret",
			Status:       payment.IntentPending,
		},
		amount:        amount,
		currency:      currency,
		correlationID: correlationID,
	}
	g.intents[id] = fi
	return fi.intent, nil
}

func (g *FakeGateway) RetrieveIntent(ctx context.Context, intentID string) (payment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return payment.Intent{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fi, ok := g.intents[intentID]
	if !ok {
		return payment.Intent{}, errs.Newf("fake gateway: no such intent %s", intentID)
	}
	return fi.intent, nil
}

func (g *FakeGateway) CancelIntent(ctx context.Context, intentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fi, ok := g.intents[intentID]
	if !ok {
		return errs.Newf("fake gateway: no such intent %s", intentID)
	}
	if fi.intent.Status == payment.IntentSucceeded {
		return errs.Newf("fake gateway: intent %s already succeeded", intentID)
	}
	fi.cancelled = true
	fi.intent.Status = payment.IntentFailed
	return nil
}

func (g *FakeGateway) VerifyNotification(payload []byte, signatureHeader string) (payment.Event, error) {
	return parseSignedEvent(payload, signatureHeader, g.webhookSecret, g.tolerance)
}

// Succeed marks the intent as paid.
func (g *FakeGateway) Succeed(intentID string) error {
	return g.setStatus(intentID, payment.IntentSucceeded)
}

// Fail marks the intent as declined.
func (g *FakeGateway) Fail(intentID string) error {
	return g.setStatus(intentID, payment.IntentFailed)
}

// IntentFor returns the intent opened for correlationID, if any.
func (g *FakeGateway) IntentFor(correlationID uuid.UUID) (payment.Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, fi := range g.intents {
		if fi.correlationID == correlationID {
			return fi.intent, true
		}
	}
	return payment.Intent{}, false
}

// Cancelled reports whether CancelIntent was called for the intent.
func (g *FakeGateway) Cancelled(intentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	fi, ok := g.intents[intentID]
	return ok && fi.cancelled
}

func (g *FakeGateway) setStatus(intentID string, status payment.IntentStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	fi, ok := g.intents[intentID]
	if !ok {
		return errs.Newf("fake gateway: no such intent %s", intentID)
	}
	fi.intent.Status = status
	return nil
}

// SignedEvent builds a webhook body and signature header for the intent.
// kind must be EventIntentSucceeded or EventIntentFailed.
func (g *FakeGateway) SignedEvent(intentID string, kind payment.EventKind) ([]byte, string, error) {
	g.mu.Lock()
	fi, ok := g.intents[intentID]
	var correlationID uuid.UUID
	var amount int64
	var currency string
	if ok {
		correlationID, amount, currency = fi.correlationID, fi.amount, fi.currency
	}
	g.seq++
	eventID := fmt.Sprintf("evt_fake_%d", g.seq)
	g.mu.Unlock()

	if !ok {
		return nil, "", errs.Newf("fake gateway: no such intent %s", intentID)
	}

	payload, err := BuildEventPayload(eventID, intentID, kind, correlationID, amount, currency)
	if err != nil {
		return nil, "", err
	}
	return payload, SignPayload(payload, g.webhookSecret, g.now()), nil
}

// BuildEventPayload renders a gateway-shaped event body.
func BuildEventPayload(eventID, intentID string, kind payment.EventKind, correlationID uuid.UUID, amount int64, currency string) ([]byte, error) {
	var eventType, status string
	switch kind {
	case payment.EventIntentSucceeded:
		eventType, status = eventIntentSucceeded, "succeeded"
	case payment.EventIntentFailed:
		eventType, status = eventIntentFailed, "requires_payment_method"
	default:
		eventType, status = "payment_intent.created", "requires_payment_method"
	}

	metadata := map[string]string{}
	if correlationID != uuid.Nil {
		metadata[metadataReservationID] = correlationID.String()
	}

	body := map[string]any{
		"id":     eventID,
		"object": "event",
		"type":   eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       intentID,
				"object":   "payment_intent",
				"amount":   amount,
				"currency": currency,
				"status":   status,
				"metadata": metadata,
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(err, "fake gateway: encode event")
	}
	return payload, nil
}

// SignPayload returns the signature header for payload at the given time.
func SignPayload(payload []byte, secret string, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}
