package repository

import (
	"context"
	"time"

	"court-booking/internal/infra"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/internal/pkg/pgconv"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateNotificationJobParams) error
	ClaimDueNotificationJobs(ctx context.Context, db sqlc.DBTX, arg sqlc.ClaimDueNotificationJobsParams) ([]sqlc.NotificationJobs, error)
	UpdateNotificationJobStatus(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateNotificationJobStatusParams) error
	RequeueStaleNotificationJobs(ctx context.Context, db sqlc.DBTX, staleBefore pgtype.Timestamptz) (int64, error)
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      sqlc.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, db sqlc.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, job shared.NewNotificationJob) error {
	params := sqlc.CreateNotificationJobParams{
		Kind:    job.Kind,
		Topic:   job.Topic,
		Payload: job.Payload,
		RunAt:   pgconv.TimeToPgtype(job.RunAt),
		Status:  string(shared.JobQueued),
	}

	err := r.queries.CreateNotificationJob(ctx, r.db, params)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}

	return nil
}

// ClaimDue marks up to limit due jobs as sending. Concurrent dispatchers never
// claim the same job.
func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	rows, err := r.queries.ClaimDueNotificationJobs(ctx, r.db, sqlc.ClaimDueNotificationJobsParams{
		Now:     pgconv.TimeToPgtype(now),
		MaxJobs: clampLimit(limit),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}

	jobs := make([]shared.NotificationJob, len(rows))
	for i, row := range rows {
		jobs[i] = shared.NotificationJob{
			ID:       row.ID,
			Kind:     row.Kind,
			Topic:    row.Topic,
			Payload:  row.Payload,
			Attempts: int(row.Attempts),
			RunAt:    pgconv.TimeFromPgtype(row.RunAt),
		}
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx, id, shared.JobSent, "", time.Now())
}

func (r *NotificationRepository) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	return r.updateStatus(ctx, id, shared.JobQueued, lastError, runAt)
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.updateStatus(ctx, id, shared.JobFailed, lastError, time.Now())
}

// RequeueStale returns jobs left in sending by a dispatcher that died mid-publish.
func (r *NotificationRepository) RequeueStale(ctx context.Context, staleBefore time.Time) (int64, error) {
	count, err := r.queries.RequeueStaleNotificationJobs(ctx, r.db, pgconv.TimeToPgtype(staleBefore))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to requeue stale notification jobs", err)
	}
	return count, nil
}

func (r *NotificationRepository) updateStatus(ctx context.Context, id uuid.UUID, status shared.NotificationJobStatus, lastError string, runAt time.Time) error {
	params := sqlc.UpdateNotificationJobStatusParams{
		ID:        id,
		Status:    string(status),
		LastError: pgconv.NullableString(lastError),
		RunAt:     pgconv.TimeToPgtype(runAt),
	}

	err := r.queries.UpdateNotificationJobStatus(ctx, r.db, params)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}

	return nil
}
