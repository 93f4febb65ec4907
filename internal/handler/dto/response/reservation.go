package response

import (
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/usecase/commands"
	"court-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ReservationID       uuid.UUID  `json:"reservationId"`
	Status              string     `json:"status"`
	PaymentClientSecret string     `json:"paymentClientSecret,omitempty"`
	TotalPrice          int64      `json:"totalPrice"`
	Currency            string     `json:"currency"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty"`
}

func FromCreateResult(r *commands.CreateReservationResult) *CreateReservationResponse {
	v := r.Reservation
	return &CreateReservationResponse{
		ReservationID:       v.ID,
		Status:              v.Status,
		PaymentClientSecret: r.ClientSecret,
		TotalPrice:          v.TotalPrice,
		Currency:            v.Currency,
		ExpiresAt:           v.ExpiresAt,
	}
}

type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	ResourceID      uuid.UUID  `json:"resourceId"`
	ResourceName    string     `json:"resourceName"`
	Date            string     `json:"date"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	UnitPrice       int64      `json:"unitPrice"`
	TotalPrice      int64      `json:"totalPrice"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	PaymentIntentID string     `json:"paymentIntentId,omitempty"`
	PaymentStatus   string     `json:"paymentStatus"`
	CancelReason    string     `json:"cancelReason,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:              v.ID,
		UserID:          v.UserID,
		ResourceID:      v.ResourceID,
		ResourceName:    v.ResourceName,
		Date:            v.Date.Format(reservation.DateLayout),
		StartTime:       v.StartTime,
		EndTime:         v.EndTime,
		UnitPrice:       v.UnitPrice,
		TotalPrice:      v.TotalPrice,
		Currency:        v.Currency,
		Status:          v.Status,
		PaymentIntentID: v.PaymentIntentID,
		PaymentStatus:   v.PaymentStatus,
		CancelReason:    v.CancelReason,
		ExpiresAt:       v.ExpiresAt,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

type ReservationListItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	ResourceID   uuid.UUID  `json:"resourceId"`
	ResourceName string     `json:"resourceName"`
	Date         string     `json:"date"`
	StartTime    string     `json:"startTime"`
	EndTime      string     `json:"endTime"`
	TotalPrice   int64      `json:"totalPrice"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type ReservationListResponse struct {
	Reservations []*ReservationListItemResponse `json:"reservations"`
	NextCursor   string                         `json:"nextCursor,omitempty"`
}

func FromReservationList(items []*queries.ReservationListItem, next *queries.Cursor) *ReservationListResponse {
	res := &ReservationListResponse{Reservations: make([]*ReservationListItemResponse, len(items))}
	for i, it := range items {
		res.Reservations[i] = &ReservationListItemResponse{
			ID:           it.ID,
			ResourceID:   it.ResourceID,
			ResourceName: it.ResourceName,
			Date:         it.Date.Format(reservation.DateLayout),
			StartTime:    it.StartTime,
			EndTime:      it.EndTime,
			TotalPrice:   it.TotalPrice,
			Currency:     it.Currency,
			Status:       it.Status,
			ExpiresAt:    it.ExpiresAt,
			CreatedAt:    it.CreatedAt,
		}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}

type TransitionResponse struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Status        string    `json:"status"`
}

func FromTransition(r *commands.TransitionResult) *TransitionResponse {
	return &TransitionResponse{ReservationID: r.ReservationID, Status: r.Status.String()}
}

type BookedSlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
}

type AvailabilityResponse struct {
	ResourceID uuid.UUID            `json:"resourceId"`
	Date       string               `json:"date"`
	Booked     []BookedSlotResponse `json:"booked"`
}

func FromAvailability(v *queries.AvailabilityView) *AvailabilityResponse {
	booked := make([]BookedSlotResponse, len(v.Booked))
	for i, b := range v.Booked {
		booked[i] = BookedSlotResponse(b)
	}
	return &AvailabilityResponse{
		ResourceID: v.ResourceID,
		Date:       v.Date.Format(reservation.DateLayout),
		Booked:     booked,
	}
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
