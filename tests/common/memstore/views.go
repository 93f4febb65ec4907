//go:build unit || e2e

package memstore

import (
	"context"
	"slices"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// Views adapts the store to the read-side repositories.
func (s *Store) Views() (queries.ReservationViewRepo, queries.ResourceViewRepo) {
	return reservationViews{s}, resourceViews{s}
}

type reservationViews struct{ s *Store }

func (v reservationViews) FindByID(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	rec, ok := v.s.st.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	res := v.s.resources[rec.Slot.ResourceID()]

	return &queries.ReservationView{
		ID:              rec.ID,
		UserID:          rec.UserID,
		ResourceID:      rec.Slot.ResourceID(),
		ResourceName:    res.Name,
		ResourceOwnerID: res.OwnerID,
		VenueID:         rec.VenueID,
		Date:            rec.Slot.Date(),
		StartTime:       rec.Slot.Start().String(),
		EndTime:         rec.Slot.End().String(),
		UnitPrice:       rec.UnitPrice.Amount(),
		TotalPrice:      rec.TotalPrice.Amount(),
		Currency:        rec.Currency,
		Status:          rec.Status.String(),
		PaymentIntentID: rec.PaymentIntentID,
		PaymentStatus:   rec.PaymentStatus.String(),
		CancelReason:    rec.CancelReason.String(),
		ExpiresAt:       rec.ExpiresAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

func (v reservationViews) FindByUserIDFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return v.list(userID, nil, uuid.Nil, limit), nil
}

func (v reservationViews) FindByUserIDKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return v.list(userID, &lastCreatedAt, lastID, limit), nil
}

// list orders by (created_at, id) descending like the SQL keyset query.
func (v reservationViews) list(userID uuid.UUID, afterCreatedAt *time.Time, afterID uuid.UUID, limit int32) []*queries.ReservationListItem {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var recs []reservation.Record
	for _, rec := range v.s.st.reservations {
		if rec.UserID != userID {
			continue
		}
		if afterCreatedAt != nil {
			if rec.CreatedAt.After(*afterCreatedAt) {
				continue
			}
			if rec.CreatedAt.Equal(*afterCreatedAt) && rec.ID.String() >= afterID.String() {
				continue
			}
		}
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b reservation.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID.String() > b.ID.String():
			return -1
		case a.ID.String() < b.ID.String():
			return 1
		}
		return 0
	})
	recs = truncate(recs, int(limit))

	out := make([]*queries.ReservationListItem, len(recs))
	for i, rec := range recs {
		out[i] = &queries.ReservationListItem{
			ID:           rec.ID,
			ResourceID:   rec.Slot.ResourceID(),
			ResourceName: v.s.resources[rec.Slot.ResourceID()].Name,
			Date:         rec.Slot.Date(),
			StartTime:    rec.Slot.Start().String(),
			EndTime:      rec.Slot.End().String(),
			TotalPrice:   rec.TotalPrice.Amount(),
			Currency:     rec.Currency,
			Status:       rec.Status.String(),
			ExpiresAt:    rec.ExpiresAt,
			CreatedAt:    rec.CreatedAt,
		}
	}
	return out
}

func (v reservationViews) FindActiveByResourceDate(_ context.Context, resourceID uuid.UUID, date time.Time) ([]queries.BookedSlot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	day, err := reservation.NewSlot(resourceID, date, 0, reservation.MinutesPerDay)
	if err != nil {
		return nil, err
	}

	var recs []reservation.Record
	for _, rec := range v.s.st.reservations {
		if rec.Status.IsActive() && rec.Slot.Overlaps(day) {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, func(a, b reservation.Record) int {
		return a.Slot.Start().Minutes() - b.Slot.Start().Minutes()
	})

	out := make([]queries.BookedSlot, len(recs))
	for i, rec := range recs {
		out[i] = queries.BookedSlot{
			StartTime: rec.Slot.Start().String(),
			EndTime:   rec.Slot.End().String(),
			Status:    rec.Status.String(),
		}
	}
	return out, nil
}

type resourceViews struct{ s *Store }

func (v resourceViews) FindByID(_ context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	res, ok := v.s.resources[id]
	if !ok {
		return nil, infra.WrapRepoErr("resource not found", nil, infra.KindNotFound)
	}
	return &queries.ResourceView{
		ID:        res.ID,
		VenueID:   res.VenueID,
		OwnerID:   res.OwnerID,
		Name:      res.Name,
		UnitPrice: res.UnitPrice,
		Currency:  res.Currency,
	}, nil
}
