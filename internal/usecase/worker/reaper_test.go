//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra/cache"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/shared"
	"court-booking/internal/usecase/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reaperConfig = config.ReaperConfig{
	Interval:    time.Second,
	BatchSize:   100,
	ResyncEvery: 1,
}

func TestReaper_SweepExpiresLapsedHolds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reaper := worker.NewReaper(f.store, f.cmds, f.index, f.clock, reaperConfig, f.logger)

	lapsed := f.create(t, "09:00", "10:00", nil)
	f.clock.Advance(10 * time.Minute)
	fresh := f.create(t, "10:00", "11:00", nil)
	f.clock.Advance(6 * time.Minute)

	result, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Expired)
	assert.Zero(t, result.Failed)

	lapsedRec, _ := f.store.Reservation(lapsed)
	assert.Equal(t, reservation.StatusCancelled, lapsedRec.Status)
	assert.Equal(t, reservation.ReasonExpired, lapsedRec.CancelReason)
	assert.True(t, f.gw.Cancelled(lapsedRec.PaymentIntentID))

	freshRec, _ := f.store.Reservation(fresh)
	assert.Equal(t, reservation.StatusPending, freshRec.Status)
	assert.Equal(t, 1, f.index.Len())
	assert.Len(t, f.store.JobsOfKind(shared.NotificationKindExpired), 1)

	again, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Expired, "sweeps are idempotent")
}

func TestReaper_SweepFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	emptyIndex := cache.NewMemoryExpiryIndex()
	reaper := worker.NewReaper(f.store, f.cmds, emptyIndex, f.clock, reaperConfig, f.logger)

	id := f.create(t, "09:00", "10:00", nil)
	f.clock.Advance(20 * time.Minute)

	result, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)

	rec, _ := f.store.Reservation(id)
	assert.Equal(t, reservation.StatusCancelled, rec.Status)
}

type brokenIndex struct{ *cache.MemoryExpiryIndex }

func (brokenIndex) Due(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, errors.New("redis: i/o timeout")
}

func TestReaper_SweepToleratesIndexOutage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reaper := worker.NewReaper(f.store, f.cmds, brokenIndex{f.index}, f.clock, reaperConfig, f.logger)

	f.create(t, "09:00", "10:00", nil)
	f.clock.Advance(20 * time.Minute)

	result, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
}

func TestReaper_SweepSkipsSettledCandidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reaper := worker.NewReaper(f.store, f.cmds, f.index, f.clock, reaperConfig, f.logger)

	id := f.create(t, "09:00", "10:00", nil)
	rec, _ := f.store.Reservation(id)
	require.NoError(t, f.gw.Succeed(rec.PaymentIntentID))
	_, err := f.cmds.ConfirmReservation(ctx, reservation.SystemActor(), id, rec.PaymentIntentID)
	require.NoError(t, err)

	// A stale index entry for a confirmed reservation is dropped, not expired.
	require.NoError(t, f.index.Add(ctx, id, f.clock.Now()))
	f.clock.Advance(time.Hour)

	result, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Zero(t, result.Expired)
	assert.Zero(t, f.index.Len())

	rec, _ = f.store.Reservation(id)
	assert.Equal(t, reservation.StatusConfirmed, rec.Status)
}

func TestReaper_SweepPurgesIdempotencyKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reaper := worker.NewReaper(f.store, f.cmds, f.index, f.clock, reaperConfig, f.logger)

	key := uuid.New()
	f.create(t, "09:00", "10:00", &key)

	f.clock.Advance(25 * time.Hour)
	result, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PurgedKeys)
	assert.Equal(t, 1, result.Expired)
}

func TestReaper_Resync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rebuilt := cache.NewMemoryExpiryIndex()
	reaper := worker.NewReaper(f.store, f.cmds, rebuilt, f.clock, reaperConfig, f.logger)

	f.create(t, "09:00", "10:00", nil)
	f.create(t, "10:00", "11:00", nil)
	confirmed := f.create(t, "11:00", "12:00", nil)
	rec, _ := f.store.Reservation(confirmed)
	require.NoError(t, f.gw.Succeed(rec.PaymentIntentID))
	_, err := f.cmds.ConfirmReservation(ctx, reservation.SystemActor(), confirmed, rec.PaymentIntentID)
	require.NoError(t, err)

	require.NoError(t, reaper.Resync(ctx))
	assert.Equal(t, 2, rebuilt.Len())
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	reaper := worker.NewReaper(f.store, f.cmds, f.index, f.clock, config.ReaperConfig{Interval: 5 * time.Millisecond}, f.logger)

	f.create(t, "09:00", "10:00", nil)
	f.clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reaper.Run(ctx) }()

	require.Eventually(t, func() bool { return len(f.store.JobsOfKind(shared.NotificationKindExpired)) == 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
