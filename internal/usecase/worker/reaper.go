package worker

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/pkg/clock"
	"court-booking/internal/pkg/config"
	"court-booking/internal/usecase/commands"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const resyncLimit = 10000

type SweepResult struct {
	Candidates int
	Expired    int
	Failed     int
	PurgedKeys int64
}

// Reaper cancels pending holds whose deadline has passed. Candidates come
// from the expiry index and from the store, so a stale index only delays work.
type Reaper struct {
	uow      shared.UnitOfWork
	commands commands.ReservationCommands
	index    commands.ExpiryIndex
	clock    clock.Clock
	cfg      config.ReaperConfig
	logger   *slog.Logger

	ticks int
}

func NewReaper(
	uow shared.UnitOfWork,
	reservationCommands commands.ReservationCommands,
	index commands.ExpiryIndex,
	clock clock.Clock,
	cfg config.ReaperConfig,
	logger *slog.Logger,
) *Reaper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.ResyncEvery <= 0 {
		cfg.ResyncEvery = 10
	}
	return &Reaper{
		uow:      uow,
		commands: reservationCommands,
		index:    index,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With(slog.String("worker", "reaper")),
	}
}

// Run resyncs the index, then sweeps every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) error {
	if err := r.Resync(ctx); err != nil {
		r.logger.WarnContext(ctx, "initial expiry index resync failed", slog.String("error", err.Error()))
	}

	t := time.NewTicker(r.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Reaper) tick(ctx context.Context) {
	r.ticks++
	if r.ticks%r.cfg.ResyncEvery == 0 {
		if err := r.Resync(ctx); err != nil {
			r.logger.WarnContext(ctx, "expiry index resync failed", slog.String("error", err.Error()))
		}
	}

	if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
		r.logger.ErrorContext(ctx, "reaper sweep failed", slog.String("error", err.Error()))
	}
}

// Resync loads every pending deadline from the store into the index.
func (r *Reaper) Resync(ctx context.Context) error {
	var entries []shared.ExpiryEntry
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		entries, err = tx.Reservations().ListPendingExpiries(ctx, resyncLimit)
		return err
	})
	if err != nil {
		return err
	}
	return r.index.Sync(ctx, entries)
}

// Sweep runs one expiry pass and purges lapsed idempotency keys.
func (r *Reaper) Sweep(ctx context.Context) (SweepResult, error) {
	now := r.clock.Now()
	var result SweepResult

	candidates, err := r.candidates(ctx, now)
	if err != nil {
		return result, err
	}
	result.Candidates = len(candidates)

	for _, id := range candidates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		expired, err := r.commands.ExpireReservation(ctx, id)
		if err != nil {
			result.Failed++
			r.logger.WarnContext(ctx, "failed to expire reservation",
				slog.String("reservation_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		if expired {
			result.Expired++
		}
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		result.PurgedKeys, err = tx.Idempotency().DeleteExpired(ctx, now)
		return err
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to purge idempotency keys", slog.String("error", err.Error()))
	}

	if result.Expired > 0 || result.Failed > 0 || result.PurgedKeys > 0 {
		r.logger.InfoContext(ctx, "reaper sweep",
			slog.Int("candidates", result.Candidates),
			slog.Int("expired", result.Expired),
			slog.Int("failed", result.Failed),
			slog.Int64("purged_keys", result.PurgedKeys))
	}
	return result, nil
}

func (r *Reaper) candidates(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	due, err := r.index.Due(ctx, now, r.cfg.BatchSize)
	if err != nil {
		r.logger.WarnContext(ctx, "expiry index unavailable", slog.String("error", err.Error()))
	}
	for _, id := range due {
		add(id)
	}

	var stored []shared.ExpiryEntry
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		stored, err = tx.Reservations().ListExpiredPending(ctx, now, r.cfg.BatchSize)
		return err
	})
	if err != nil {
		if len(ids) == 0 {
			return nil, err
		}
		r.logger.WarnContext(ctx, "failed to list expired reservations", slog.String("error", err.Error()))
	}
	for _, e := range stored {
		add(e.ReservationID)
	}
	return ids, nil
}
