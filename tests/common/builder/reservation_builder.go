//go:build unit || e2e

package builder

import (
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/domain/resource"
	reqdto "court-booking/internal/handler/dto/request"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/clock"
	"court-booking/internal/usecase/queries"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationBuilder struct {
	UserID       uuid.UUID
	ResourceID   uuid.UUID
	ResourceName string
	VenueID      uuid.UUID
	OwnerID      uuid.UUID
	Date         string
	StartTime    string
	EndTime      string
	UnitPrice    int64
	Currency     string
	Now          time.Time
	HoldTimeout  time.Duration
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		UserID:       uuid.New(),
		ResourceID:   uuid.New(),
		ResourceName: "Center Court",
		VenueID:      uuid.New(),
		OwnerID:      uuid.New(),
		Date:         "2026-05-02",
		StartTime:    "10:00",
		EndTime:      "11:30",
		UnitPrice:    500,
		Currency:     "jpy",
		Now:          time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		HoldTimeout:  15 * time.Minute,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithSlot(start, end string) *ReservationBuilder {
	b.StartTime, b.EndTime = start, end
	return b
}

// Build methods
func (b *ReservationBuilder) BuildResource() (*resource.Resource, error) {
	return resource.NewResource(b.ResourceID, b.VenueID, b.OwnerID, b.ResourceName, b.UnitPrice, b.Currency)
}

func (b *ReservationBuilder) BuildSlot() (reservation.Slot, error) {
	date, err := reservation.ParseDate(b.Date)
	if err != nil {
		return reservation.Slot{}, err
	}
	start, err := reservation.ParseTimeOfDay(b.StartTime)
	if err != nil {
		return reservation.Slot{}, err
	}
	end, err := reservation.ParseTimeOfDay(b.EndTime)
	if err != nil {
		return reservation.Slot{}, err
	}
	return reservation.NewSlot(b.ResourceID, date, start, end)
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	res, err := b.BuildResource()
	if err != nil {
		return nil, err
	}
	slot, err := b.BuildSlot()
	if err != nil {
		return nil, err
	}
	factory := reservation.NewFactory(clock.NewMockClock(b.Now), reservation.NewHourlyPriceCalculator(), b.HoldTimeout)
	return factory.CreateReservation(res, b.UserID, slot)
}

func (b *ReservationBuilder) BuildSnapshot() shared.ResourceSnapshot {
	return shared.ResourceSnapshot{
		ID:        b.ResourceID,
		VenueID:   b.VenueID,
		OwnerID:   b.OwnerID,
		Name:      b.ResourceName,
		UnitPrice: b.UnitPrice,
		Currency:  b.Currency,
	}
}

func (b *ReservationBuilder) BuildResourceInfra() sqlc.Resources {
	return sqlc.Resources{
		ID:        b.ResourceID,
		VenueID:   b.VenueID,
		OwnerID:   b.OwnerID,
		Name:      b.ResourceName,
		UnitPrice: b.UnitPrice,
		Currency:  b.Currency,
		CreatedAt: pgtype.Timestamptz{Time: b.Now, Valid: true},
		UpdatedAt: pgtype.Timestamptz{Time: b.Now, Valid: true},
	}
}

func (b *ReservationBuilder) BuildInfra() sqlc.Reservations {
	date, _ := reservation.ParseDate(b.Date)
	start, _ := reservation.ParseTimeOfDay(b.StartTime)
	end, _ := reservation.ParseTimeOfDay(b.EndTime)
	total := (b.UnitPrice*int64(end-start) + 30) / 60
	return sqlc.Reservations{
		ID:            uuid.New(),
		UserID:        b.UserID,
		ResourceID:    b.ResourceID,
		VenueID:       b.VenueID,
		SlotDate:      pgtype.Date{Time: date, Valid: true},
		StartMinute:   int32(start.Minutes()),
		EndMinute:     int32(end.Minutes()),
		UnitPrice:     b.UnitPrice,
		TotalPrice:    total,
		Currency:      b.Currency,
		Status:        reservation.StatusPending.String(),
		PaymentStatus: reservation.PaymentPending.String(),
		ExpiresAt:     pgtype.Timestamptz{Time: b.Now.Add(b.HoldTimeout), Valid: true},
		CreatedAt:     pgtype.Timestamptz{Time: b.Now, Valid: true},
		UpdatedAt:     pgtype.Timestamptz{Time: b.Now, Valid: true},
	}
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		ResourceID: b.ResourceID,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
	}
}

func (b *ReservationBuilder) BuildViewQuery() *queries.ReservationView {
	date, _ := reservation.ParseDate(b.Date)
	expiresAt := b.Now.Add(b.HoldTimeout)
	start, _ := reservation.ParseTimeOfDay(b.StartTime)
	end, _ := reservation.ParseTimeOfDay(b.EndTime)
	return &queries.ReservationView{
		ID:              uuid.New(),
		UserID:          b.UserID,
		ResourceID:      b.ResourceID,
		ResourceName:    b.ResourceName,
		ResourceOwnerID: b.OwnerID,
		VenueID:         b.VenueID,
		Date:            date,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		UnitPrice:       b.UnitPrice,
		TotalPrice:      (b.UnitPrice*int64(end-start) + 30) / 60,
		Currency:        b.Currency,
		Status:          reservation.StatusPending.String(),
		PaymentIntentID: "pi_test_1",
		PaymentStatus:   reservation.PaymentPending.String(),
		ExpiresAt:       &expiresAt,
		CreatedAt:       b.Now,
		UpdatedAt:       b.Now,
	}
}

func (b *ReservationBuilder) BuildListItem() *queries.ReservationListItem {
	view := b.BuildViewQuery()
	return &queries.ReservationListItem{
		ID:           view.ID,
		ResourceID:   view.ResourceID,
		ResourceName: view.ResourceName,
		Date:         view.Date,
		StartTime:    view.StartTime,
		EndTime:      view.EndTime,
		TotalPrice:   view.TotalPrice,
		Currency:     view.Currency,
		Status:       view.Status,
		ExpiresAt:    view.ExpiresAt,
		CreatedAt:    view.CreatedAt,
	}
}
