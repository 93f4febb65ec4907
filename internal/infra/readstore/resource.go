package readstore

import (
	"context"

	"court-booking/internal/infra"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/pgconv"
	"court-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ResourceReadQueries interface {
	GetResourceByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Resources, error)
}

type ResourceReadStore struct {
	queries ResourceReadQueries
	db      sqlc.DBTX
}

func NewResourceReadStore(queries ResourceReadQueries, db sqlc.DBTX) *ResourceReadStore {
	return &ResourceReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ResourceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	row, err := r.queries.GetResourceByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("resource not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find resource by ID", err)
	}

	return &queries.ResourceView{
		ID:        row.ID,
		VenueID:   row.VenueID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		UnitPrice: row.UnitPrice,
		Currency:  row.Currency,
	}, nil
}
