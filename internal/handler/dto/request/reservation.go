package request

import (
	"strings"

	"court-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	ResourceID uuid.UUID `json:"resourceId" binding:"required"`
	Date       string    `json:"date" binding:"required" example:"2026-05-02"`
	StartTime  string    `json:"startTime" binding:"required,len=5" example:"10:00"`
	EndTime    string    `json:"endTime" binding:"required,len=5" example:"11:30"`
}

func (r CreateReservationRequest) ToInput() commands.CreateReservationInput {
	return commands.CreateReservationInput{
		ResourceID: r.ResourceID,
		Date:       strings.TrimSpace(r.Date),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

type ConfirmReservationRequest struct {
	IntentID string `json:"intentId" binding:"required"`
}
