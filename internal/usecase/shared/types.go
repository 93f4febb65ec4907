package shared

import (
	"encoding/json"
	"time"

	"court-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type ResourceSnapshot struct {
	ID        uuid.UUID
	VenueID   uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	UnitPrice int64
	Currency  string
}

type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Endpoint            string
	Status              IdempotencyStatus
	RequestHash         string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

type ExpiryEntry struct {
	ReservationID uuid.UUID
	ExpiresAt     time.Time
}

const (
	NotificationKindConfirmed = "reservation.confirmed"
	NotificationKindCancelled = "reservation.cancelled"
	NotificationKindExpired   = "reservation.expired"

	NotificationTopic = "reservations"
)

type NotificationJobStatus string

const (
	JobQueued  NotificationJobStatus = "queued"
	JobSending NotificationJobStatus = "sending"
	JobSent    NotificationJobStatus = "sent"
	JobFailed  NotificationJobStatus = "failed"
)

type NewNotificationJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	Attempts int
	RunAt    time.Time
}

// NotificationPayload is the body of every reservation notification.
type NotificationPayload struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	ResourceID    uuid.UUID `json:"resource_id"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationNotification(kind string, r *reservation.Reservation, at time.Time) (NewNotificationJob, error) {
	payload, err := json.Marshal(NotificationPayload{
		ReservationID: r.ID(),
		UserID:        r.UserID(),
		ResourceID:    r.ResourceID(),
		Status:        r.Status().String(),
		Reason:        r.CancelReason().String(),
		OccurredAt:    at,
	})
	if err != nil {
		return NewNotificationJob{}, err
	}
	return NewNotificationJob{
		Kind:    kind,
		Topic:   NotificationTopic,
		Payload: payload,
		RunAt:   at,
	}, nil
}
