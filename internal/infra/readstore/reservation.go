package readstore

import (
	"context"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/pgconv"
	"court-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationViewQueries interface {
	GetReservationView(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.GetReservationViewRow, error)
	ListReservationsByUserFirstPage(ctx context.Context, db sqlc.DBTX, arg sqlc.ListReservationsByUserFirstPageParams) ([]sqlc.ListReservationsByUserFirstPageRow, error)
	ListReservationsByUserKeyset(ctx context.Context, db sqlc.DBTX, arg sqlc.ListReservationsByUserKeysetParams) ([]sqlc.ListReservationsByUserKeysetRow, error)
	ListOverlappingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListOverlappingReservationsParams) ([]sqlc.Reservations, error)
}

type ReservationReadStore struct {
	queries ReservationViewQueries
	db      sqlc.DBTX
}

func NewReservationReadStore(queries ReservationViewQueries, db sqlc.DBTX) *ReservationReadStore {
	return &ReservationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row, err := r.queries.GetReservationView(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	return rowToReservationView(row), nil
}

func rowToReservationView(row sqlc.GetReservationViewRow) *queries.ReservationView {
	return &queries.ReservationView{
		ID:              row.ID,
		UserID:          row.UserID,
		ResourceID:      row.ResourceID,
		ResourceName:    row.ResourceName,
		ResourceOwnerID: row.ResourceOwnerID,
		VenueID:         row.VenueID,
		Date:            pgconv.DateFromPgtype(row.SlotDate),
		StartTime:       reservation.TimeOfDay(row.StartMinute).String(),
		EndTime:         reservation.TimeOfDay(row.EndMinute).String(),
		UnitPrice:       row.UnitPrice,
		TotalPrice:      row.TotalPrice,
		Currency:        row.Currency,
		Status:          row.Status,
		PaymentIntentID: pgconv.StringFromPgtype(row.PaymentIntentID),
		PaymentStatus:   row.PaymentStatus,
		CancelReason:    pgconv.StringFromPgtype(row.CancelReason),
		ExpiresAt:       pgconv.TimePtrFromPgtype(row.ExpiresAt),
		CreatedAt:       pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:       pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

func (r *ReservationReadStore) FindByUserIDFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	rows, err := r.queries.ListReservationsByUserFirstPage(ctx, r.db, sqlc.ListReservationsByUserFirstPageParams{
		UserID:  userID,
		MaxRows: limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations first page", err)
	}

	return mapRows(rows, func(row sqlc.ListReservationsByUserFirstPageRow) *queries.ReservationListItem {
		return toReservationListItem(sqlc.ListReservationsByUserKeysetRow(row))
	}), nil
}

func (r *ReservationReadStore) FindByUserIDKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	params := sqlc.ListReservationsByUserKeysetParams{
		UserID:    userID,
		CreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		ID:        lastID,
		MaxRows:   limit,
	}

	rows, err := r.queries.ListReservationsByUserKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations keyset", err)
	}

	return mapRows(rows, toReservationListItem), nil
}

// FindActiveByResourceDate lists the intervals held on the whole day.
func (r *ReservationReadStore) FindActiveByResourceDate(ctx context.Context, resourceID uuid.UUID, date time.Time) ([]queries.BookedSlot, error) {
	params := sqlc.ListOverlappingReservationsParams{
		ResourceID:  resourceID,
		SlotDate:    pgconv.DateToPgtype(date),
		StartMinute: 0,
		EndMinute:   reservation.MinutesPerDay,
	}

	rows, err := r.queries.ListOverlappingReservations(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active reservations", err)
	}

	return mapRows(rows, func(row sqlc.Reservations) queries.BookedSlot {
		return queries.BookedSlot{
			StartTime: reservation.TimeOfDay(row.StartMinute).String(),
			EndTime:   reservation.TimeOfDay(row.EndMinute).String(),
			Status:    row.Status,
		}
	}), nil
}

func toReservationListItem(row sqlc.ListReservationsByUserKeysetRow) *queries.ReservationListItem {
	return &queries.ReservationListItem{
		ID:           row.ID,
		ResourceID:   row.ResourceID,
		ResourceName: row.ResourceName,
		Date:         pgconv.DateFromPgtype(row.SlotDate),
		StartTime:    reservation.TimeOfDay(row.StartMinute).String(),
		EndTime:      reservation.TimeOfDay(row.EndMinute).String(),
		TotalPrice:   row.TotalPrice,
		Currency:     row.Currency,
		Status:       row.Status,
		ExpiresAt:    pgconv.TimePtrFromPgtype(row.ExpiresAt),
		CreatedAt:    pgconv.TimeFromPgtype(row.CreatedAt),
	}
}

func mapRows[R, V any](rows []R, f func(R) V) []V {
	out := make([]V, len(rows))
	for i, row := range rows {
		out[i] = f(row)
	}
	return out
}
