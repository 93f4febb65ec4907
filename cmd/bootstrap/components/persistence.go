package components

import (
	"court-booking/internal/infra/readstore"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/infra/uow"
	"court-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// PersistenceModule splits storage into two paths. Views read straight off
// the pool; every write goes through the unit of work, which builds its
// repositories against the open transaction.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		sqlc.New,
		func(pool *pgxpool.Pool) sqlc.DBTX { return pool },
	),
	viewModule,
	fx.Provide(uow.NewPostgresUoW),
)

var viewModule = fx.Module("persistence/views",
	fx.Provide(
		fx.Annotate(
			func(q *sqlc.Queries, db sqlc.DBTX) *readstore.ReservationReadStore {
				return readstore.NewReservationReadStore(q, db)
			},
			fx.As(new(queries.ReservationViewRepo)),
		),
		fx.Annotate(
			func(q *sqlc.Queries, db sqlc.DBTX) *readstore.ResourceReadStore {
				return readstore.NewResourceReadStore(q, db)
			},
			fx.As(new(queries.ResourceViewRepo)),
		),
	),
)
