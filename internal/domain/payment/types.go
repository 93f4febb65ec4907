package payment

import "github.com/google/uuid"

// IntentStatus collapses gateway-specific states into the three the engine acts on.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentSucceeded IntentStatus = "succeeded"
	IntentFailed    IntentStatus = "failed"
)

func (s IntentStatus) String() string {
	return string(s)
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
}

type EventKind string

const (
	EventIntentSucceeded EventKind = "intent.succeeded"
	EventIntentFailed    EventKind = "intent.failed"
	EventIgnored         EventKind = "ignored"
)

// Event is a verified gateway notification.
type Event struct {
	ID       string
	Kind     EventKind
	IntentID string
	// ReservationID is the correlation id sent with the intent; uuid.Nil if absent.
	ReservationID uuid.UUID
}
