package queries

import (
	"time"

	"github.com/google/uuid"
)

// ReservationView is the read model of a single reservation.
type ReservationView struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ResourceID      uuid.UUID
	ResourceName    string
	ResourceOwnerID uuid.UUID
	VenueID         uuid.UUID
	Date            time.Time
	StartTime       string
	EndTime         string
	UnitPrice       int64
	TotalPrice      int64
	Currency        string
	Status          string
	PaymentIntentID string
	PaymentStatus   string
	CancelReason    string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ReservationListItem struct {
	ID           uuid.UUID
	ResourceID   uuid.UUID
	ResourceName string
	Date         time.Time
	StartTime    string
	EndTime      string
	TotalPrice   int64
	Currency     string
	Status       string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

type ResourceView struct {
	ID        uuid.UUID
	VenueID   uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	UnitPrice int64
	Currency  string
}

// BookedSlot is an interval held by a pending or confirmed reservation.
type BookedSlot struct {
	StartTime string
	EndTime   string
	Status    string
}

type AvailabilityView struct {
	ResourceID uuid.UUID
	Date       time.Time
	Booked     []BookedSlot
}
