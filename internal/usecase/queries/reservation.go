package queries

import (
	"context"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../../../tests/mock/queries/reservation_mock.go -package=queriesmock . ReservationQueries

type ReservationQueries interface {
	GetByID(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*ReservationView, error)
	// GetByIDSystem skips authorization; callers have already authorized.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error)
	Availability(ctx context.Context, resourceID uuid.UUID, date time.Time) (*AvailabilityView, error)
}

type ReservationViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByUserIDFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindByUserIDKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindActiveByResourceDate(ctx context.Context, resourceID uuid.UUID, date time.Time) ([]BookedSlot, error)
}

type ResourceViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ResourceView, error)
}

type reservationQueriesImpl struct {
	repo      ReservationViewRepo
	resources ResourceViewRepo
}

func NewReservationQueries(repo ReservationViewRepo, resources ResourceViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo, resources: resources}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor reservation.Actor, id uuid.UUID) (*ReservationView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	owned := reservation.Reconstruct(reservation.Record{ID: view.ID, UserID: view.UserID})
	if err := reservation.Authorize(reservation.ActionView, owned, actor, view.ResourceOwnerID); err != nil {
		return nil, errs.Mark(err, errs.ErrForbidden)
	}
	return view, nil
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrReservationNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*ReservationListItem
		err  error
	)
	if after != nil && after.After != "" {
		last, decodeErr := decodeKeyset(after.After)
		if decodeErr != nil {
			return nil, nil, decodeErr
		}
		rows, err = q.repo.FindByUserIDKeyset(ctx, userID, last.CreatedAt, last.ID, int32(limit+1))
	} else {
		rows, err = q.repo.FindByUserIDFirstPage(ctx, userID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if len(rows) <= limit {
		return rows, nil, nil
	}

	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, keyset{CreatedAt: last.CreatedAt, ID: last.ID}.encode(), nil
}

func (q *reservationQueriesImpl) Availability(ctx context.Context, resourceID uuid.UUID, date time.Time) (*AvailabilityView, error) {
	if _, err := q.resources.FindByID(ctx, resourceID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrResourceNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	booked, err := q.repo.FindActiveByResourceDate(ctx, resourceID, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	y, m, d := date.Date()
	return &AvailabilityView{
		ResourceID: resourceID,
		Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Booked:     booked,
	}, nil
}
