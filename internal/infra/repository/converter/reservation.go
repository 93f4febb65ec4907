package converter

import (
	"fmt"

	"court-booking/internal/domain/reservation"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/pgconv"
)

func ReservationToInsertParams(res *reservation.Reservation) sqlc.InsertReservationParams {
	slot := res.Slot()
	return sqlc.InsertReservationParams{
		ID:              res.ID(),
		UserID:          res.UserID(),
		ResourceID:      res.ResourceID(),
		VenueID:         res.VenueID(),
		SlotDate:        pgconv.DateToPgtype(slot.Date()),
		StartMinute:     int32(slot.Start().Minutes()),
		EndMinute:       int32(slot.End().Minutes()),
		UnitPrice:       res.UnitPrice().Amount(),
		TotalPrice:      res.TotalPrice().Amount(),
		Currency:        res.Currency(),
		Status:          res.Status().String(),
		PaymentIntentID: pgconv.NullableString(res.PaymentIntentID()),
		PaymentStatus:   res.PaymentStatus().String(),
		CancelReason:    pgconv.NullableString(res.CancelReason().String()),
		ExpiresAt:       pgconv.TimePtrToPgtype(res.ExpiresAt()),
		CreatedAt:       pgconv.TimeToPgtype(res.CreatedAt()),
		UpdatedAt:       pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}

func ReservationToUpdateParams(res *reservation.Reservation) sqlc.UpdateReservationStateParams {
	return sqlc.UpdateReservationStateParams{
		ID:              res.ID(),
		Status:          res.Status().String(),
		PaymentIntentID: pgconv.NullableString(res.PaymentIntentID()),
		PaymentStatus:   res.PaymentStatus().String(),
		CancelReason:    pgconv.NullableString(res.CancelReason().String()),
		ExpiresAt:       pgconv.TimePtrToPgtype(res.ExpiresAt()),
		UpdatedAt:       pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}

func ReservationFromRow(row sqlc.Reservations) (*reservation.Reservation, error) {
	slot, err := reservation.NewSlot(
		row.ResourceID,
		pgconv.DateFromPgtype(row.SlotDate),
		reservation.TimeOfDay(row.StartMinute),
		reservation.TimeOfDay(row.EndMinute),
	)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", row.ID, err)
	}

	status, err := reservation.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", row.ID, err)
	}

	unitPrice, err := reservation.NewMoney(row.UnitPrice)
	if err != nil {
		return nil, err
	}
	totalPrice, err := reservation.NewMoney(row.TotalPrice)
	if err != nil {
		return nil, err
	}

	return reservation.Reconstruct(reservation.Record{
		ID:              row.ID,
		UserID:          row.UserID,
		VenueID:         row.VenueID,
		Slot:            slot,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		Currency:        row.Currency,
		Status:          status,
		PaymentIntentID: pgconv.StringFromPgtype(row.PaymentIntentID),
		PaymentStatus:   reservation.PaymentStatus(row.PaymentStatus),
		CancelReason:    reservation.CancelReason(pgconv.StringFromPgtype(row.CancelReason)),
		CreatedAt:       pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:       pgconv.TimeFromPgtype(row.UpdatedAt),
		ExpiresAt:       pgconv.TimePtrFromPgtype(row.ExpiresAt),
	}), nil
}
