//go:build unit

package worker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra/cache"
	"court-booking/internal/infra/gateway"
	"court-booking/internal/pkg/clock"
	"court-booking/internal/usecase/commands"
	"court-booking/internal/usecase/queries"
	"court-booking/internal/usecase/shared"
	"court-booking/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memstore.Store
	gw       *gateway.FakeGateway
	index    *cache.MemoryExpiryIndex
	clock    *clock.MockClock
	cmds     commands.ReservationCommands
	logger   *slog.Logger
	resource shared.ResourceSnapshot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memstore.New(),
		gw:     gateway.NewFakeGateway("whsec_test", 5*time.Minute),
		index:  cache.NewMemoryExpiryIndex(),
		clock:  clock.NewMockClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		resource: shared.ResourceSnapshot{
			ID:        uuid.New(),
			VenueID:   uuid.New(),
			OwnerID:   uuid.New(),
			Name:      "Court B",
			UnitPrice: 1200,
			Currency:  "jpy",
		},
	}
	f.store.AddResource(f.resource)

	factory := reservation.NewFactory(f.clock, reservation.NewHourlyPriceCalculator(), 15*time.Minute)
	q := queries.NewReservationQueries(f.store.Views())
	f.cmds = commands.NewReservationCommands(f.store, factory, f.gw, f.index, q, f.clock, time.UTC, nil, f.logger)
	return f
}

func (f *fixture) create(t *testing.T, start, end string, key *uuid.UUID) uuid.UUID {
	t.Helper()
	result, err := f.cmds.CreateReservation(context.Background(), commands.CreateReservationInput{
		ResourceID: f.resource.ID,
		Date:       "2026-05-03",
		StartTime:  start,
		EndTime:    end,
	}, uuid.New(), key)
	require.NoError(t, err)
	return result.Reservation.ID
}
