package worker

import (
	"context"
	"log/slog"
	"time"

	"court-booking/internal/pkg/clock"
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/metrics"
	"court-booking/internal/usecase/shared"
)

// Publisher delivers one outbox job to the message transport.
type Publisher interface {
	Publish(ctx context.Context, job shared.NotificationJob) error
	Close() error
}

type DispatchResult struct {
	Claimed     int
	Sent        int
	Rescheduled int
	Failed      int
}

// staleSendingAfter is how long a job may sit in sending before another
// dispatcher takes it back.
const staleSendingAfter = 5 * time.Minute

// Dispatcher relays notification_jobs to the Publisher.
type Dispatcher struct {
	uow       shared.UnitOfWork
	publisher Publisher
	policy    RetryPolicy
	cfg       config.NotifierConfig
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewDispatcher(
	uow shared.UnitOfWork,
	publisher Publisher,
	cfg config.NotifierConfig,
	clock clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Dispatcher{
		uow:       uow,
		publisher: publisher,
		policy: RetryPolicy{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			BackoffFactor: 2,
		},
		cfg:     cfg,
		clock:   clock,
		metrics: m,
		logger:  logger.With(slog.String("worker", "dispatcher")),
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	t := time.NewTicker(d.cfg.PollInterval)
	defer t.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "notification dispatch failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// DispatchOnce claims one batch of due jobs and publishes them.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (DispatchResult, error) {
	now := d.clock.Now()
	var (
		result  DispatchResult
		jobs    []shared.NotificationJob
		requeue int64
	)

	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		requeue, err = tx.Notifications().RequeueStale(ctx, now.Add(-staleSendingAfter))
		if err != nil {
			return err
		}
		jobs, err = tx.Notifications().ClaimDue(ctx, now, d.cfg.BatchSize)
		return err
	})
	if err != nil {
		return result, err
	}
	result.Claimed = len(jobs)

	for _, job := range jobs {
		d.deliver(ctx, job, &result)
	}

	if result.Claimed > 0 || requeue > 0 {
		d.logger.InfoContext(ctx, "notification dispatch",
			slog.Int("claimed", result.Claimed),
			slog.Int("sent", result.Sent),
			slog.Int("rescheduled", result.Rescheduled),
			slog.Int("failed", result.Failed),
			slog.Int64("requeued_stale", requeue))
	}
	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, job shared.NotificationJob, result *DispatchResult) {
	publishErr := d.publisher.Publish(ctx, job)

	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Notifications()
		switch {
		case publishErr == nil:
			return repo.MarkSent(ctx, job.ID)
		case d.policy.Exhausted(job.Attempts):
			return repo.MarkFailed(ctx, job.ID, publishErr.Error())
		default:
			return repo.Reschedule(ctx, job.ID, d.clock.Now().Add(d.policy.NextDelay(job.Attempts)), publishErr.Error())
		}
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to record notification outcome",
			slog.String("notification_id", job.ID.String()),
			slog.String("error", err.Error()))
	}

	switch {
	case publishErr == nil:
		result.Sent++
		d.metrics.IncNotification("sent")
	case d.policy.Exhausted(job.Attempts):
		result.Failed++
		d.metrics.IncNotification("failed")
		d.logger.ErrorContext(ctx, "notification abandoned",
			slog.String("notification_id", job.ID.String()),
			slog.String("kind", job.Kind),
			slog.Int("attempts", job.Attempts),
			slog.String("error", publishErr.Error()))
	default:
		result.Rescheduled++
		d.metrics.IncNotification("retry")
	}
}
