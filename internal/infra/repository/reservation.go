package repository

import (
	"context"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/infra/repository/converter"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/pgconv"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationWriteQueries interface {
	LockReservationScope(ctx context.Context, db sqlc.DBTX, lockKey string) error
	ListOverlappingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListOverlappingReservationsParams) ([]sqlc.Reservations, error)
	InsertReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertReservationParams) error
	GetReservationForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservations, error)
	GetReservationByIntentForUpdate(ctx context.Context, db sqlc.DBTX, paymentIntentID pgtype.Text) (sqlc.Reservations, error)
	UpdateReservationState(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateReservationStateParams) (int64, error)
	ReleaseReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.ReleaseReservationParams) (int64, error)
	ListExpiredPendingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListExpiredPendingReservationsParams) ([]sqlc.ListExpiredPendingReservationsRow, error)
	ListPendingReservationExpiries(ctx context.Context, db sqlc.DBTX, limit int32) ([]sqlc.ListPendingReservationExpiriesRow, error)
}

type ReservationRepository struct {
	queries ReservationWriteQueries
	db      sqlc.DBTX
}

// NewReservationRepository expects db to be a transaction: TryReserve relies
// on a transaction-scoped advisory lock.
func NewReservationRepository(queries ReservationWriteQueries, db sqlc.DBTX) *ReservationRepository {
	return &ReservationRepository{
		queries: queries,
		db:      db,
	}
}

// TryReserve serializes writers on the slot's (resource, date) pair, re-checks
// for overlap under that lock and inserts. The exclusion constraint backs it up.
func (r *ReservationRepository) TryReserve(ctx context.Context, res *reservation.Reservation) error {
	slot := res.Slot()

	if err := r.queries.LockReservationScope(ctx, r.db, slot.LockKey()); err != nil {
		return infra.WrapRepoErr("failed to lock reservation scope", err)
	}

	overlapping, err := r.queries.ListOverlappingReservations(ctx, r.db, overlapParams(slot))
	if err != nil {
		return infra.WrapRepoErr("failed to check overlapping reservations", err)
	}
	if len(overlapping) > 0 {
		return infra.WrapRepoErr("slot already reserved", nil, infra.KindConflict)
	}

	if err := r.queries.InsertReservation(ctx, r.db, converter.ReservationToInsertParams(res)); err != nil {
		return infra.WrapRepoErr("failed to insert reservation", err)
	}

	return nil
}

func (r *ReservationRepository) Release(ctx context.Context, id uuid.UUID, reason reservation.CancelReason, at time.Time) (bool, error) {
	affected, err := r.queries.ReleaseReservation(ctx, r.db, sqlc.ReleaseReservationParams{
		ID:           id,
		CancelReason: pgconv.NullableString(reason.String()),
		UpdatedAt:    pgconv.TimeToPgtype(at),
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to release reservation", err)
	}
	return affected > 0, nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, slot reservation.Slot) ([]*reservation.Reservation, error) {
	rows, err := r.queries.ListOverlappingReservations(ctx, r.db, overlapParams(slot))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find overlapping reservations", err)
	}

	result := make([]*reservation.Reservation, 0, len(rows))
	for _, row := range rows {
		res, err := converter.ReservationFromRow(row)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to convert reservation row", err, infra.KindDBFailure)
		}
		result = append(result, res)
	}
	return result, nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row, err := r.queries.GetReservationForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation", err)
	}
	return r.fromRow(row)
}

func (r *ReservationRepository) GetByIntentForUpdate(ctx context.Context, intentID string) (*reservation.Reservation, error) {
	row, err := r.queries.GetReservationByIntentForUpdate(ctx, r.db, pgconv.StringToPgtype(intentID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found for intent", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation by intent", err)
	}
	return r.fromRow(row)
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	affected, err := r.queries.UpdateReservationState(ctx, r.db, converter.ReservationToUpdateParams(res))
	if err != nil {
		return infra.WrapRepoErr("failed to save reservation", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]shared.ExpiryEntry, error) {
	rows, err := r.queries.ListExpiredPendingReservations(ctx, r.db, sqlc.ListExpiredPendingReservationsParams{
		Now:     pgconv.TimeToPgtype(now),
		MaxRows: clampLimit(limit),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired pending reservations", err)
	}

	result := make([]shared.ExpiryEntry, len(rows))
	for i, row := range rows {
		result[i] = shared.ExpiryEntry{ReservationID: row.ID, ExpiresAt: row.ExpiresAt.Time}
	}
	return result, nil
}

func (r *ReservationRepository) ListPendingExpiries(ctx context.Context, limit int) ([]shared.ExpiryEntry, error) {
	rows, err := r.queries.ListPendingReservationExpiries(ctx, r.db, clampLimit(limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list pending reservation expiries", err)
	}

	result := make([]shared.ExpiryEntry, len(rows))
	for i, row := range rows {
		result[i] = shared.ExpiryEntry{ReservationID: row.ID, ExpiresAt: row.ExpiresAt.Time}
	}
	return result, nil
}

func (r *ReservationRepository) fromRow(row sqlc.Reservations) (*reservation.Reservation, error) {
	res, err := converter.ReservationFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert reservation row", err, infra.KindDBFailure)
	}
	return res, nil
}

func overlapParams(slot reservation.Slot) sqlc.ListOverlappingReservationsParams {
	return sqlc.ListOverlappingReservationsParams{
		ResourceID:  slot.ResourceID(),
		SlotDate:    pgconv.DateToPgtype(slot.Date()),
		StartMinute: int32(slot.Start().Minutes()),
		EndMinute:   int32(slot.End().Minutes()),
	}
}

func clampLimit(limit int) int32 {
	const maxLimit = 10000
	if limit <= 0 {
		return 100
	}
	if limit > maxLimit {
		return maxLimit
	}
	return int32(limit)
}
