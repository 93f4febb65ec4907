//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"court-booking/internal/domain/payment"
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

const (
	webhookSecret = "whsec_test"
	bookingDate   = "2026-05-02"
)

type fixture struct {
	store    *memstore.Store
	gw       *gateway.FakeGateway
	index    *cache.MemoryExpiryIndex
	deduper  *cache.MemoryEventDeduper
	clock    *clock.MockClock
	loc      *time.Location
	factory  *reservation.Factory
	logger   *slog.Logger
	queries  queries.ReservationQueries
	cmds     commands.ReservationCommands
	webhook  commands.WebhookCommands
	resource shared.ResourceSnapshot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	f := &fixture{
		store:   memstore.New(),
		gw:      gateway.NewFakeGateway(webhookSecret, 5*time.Minute),
		index:   cache.NewMemoryExpiryIndex(),
		deduper: cache.NewMemoryEventDeduper(time.Hour),
		clock:   clock.NewMockClock(time.Date(2026, 5, 1, 9, 0, 0, 0, loc)),
		loc:     loc,
		resource: shared.ResourceSnapshot{
			ID:        uuid.New(),
			VenueID:   uuid.New(),
			OwnerID:   uuid.New(),
			Name:      "Court A",
			UnitPrice: 500,
			Currency:  "jpy",
		},
	}
	f.store.AddResource(f.resource)

	f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	f.factory = reservation.NewFactory(f.clock, reservation.NewHourlyPriceCalculator(), 15*time.Minute)
	f.queries = queries.NewReservationQueries(f.store.Views())
	f.cmds = f.commandsWith(f.queries)
	f.webhook = commands.NewWebhookCommands(f.store, f.gw, f.index, f.deduper, f.clock, nil, f.logger)
	return f
}

// commandsWith builds reservation commands over the fixture's store that
// read views through q.
func (f *fixture) commandsWith(q queries.ReservationQueries) commands.ReservationCommands {
	return commands.NewReservationCommands(f.store, f.factory, f.gw, f.index, q, f.clock, f.loc, nil, f.logger)
}

func (f *fixture) input(start, end string) commands.CreateReservationInput {
	return commands.CreateReservationInput{
		ResourceID: f.resource.ID,
		Date:       bookingDate,
		StartTime:  start,
		EndTime:    end,
	}
}

func (f *fixture) create(t *testing.T, userID uuid.UUID, start, end string) *commands.CreateReservationResult {
	t.Helper()
	result, err := f.cmds.CreateReservation(context.Background(), f.input(start, end), userID, nil)
	require.NoError(t, err)
	return result
}

func (f *fixture) record(t *testing.T, id uuid.UUID) reservation.Record {
	t.Helper()
	rec, ok := f.store.Reservation(id)
	require.True(t, ok, "reservation %s not stored", id)
	return rec
}

func (f *fixture) deliver(t *testing.T, intentID string, kind payment.EventKind) (commands.WebhookOutcome, error) {
	t.Helper()
	payload, header, err := f.gw.SignedEvent(intentID, kind)
	require.NoError(t, err)
	return f.webhook.HandleNotification(context.Background(), payload, header)
}

func member(id uuid.UUID) reservation.Actor { return reservation.UserActor(id, false) }
func admin(id uuid.UUID) reservation.Actor  { return reservation.UserActor(id, true) }
