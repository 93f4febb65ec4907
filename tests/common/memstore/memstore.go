//go:build unit || e2e

// Package memstore is an in-memory UnitOfWork for use-case tests. A single
// mutex is held for the whole of Within, so transactions are serial and an
// error rolls every write back.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type Job struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	Status    shared.NotificationJobStatus
	Attempts  int
	LastError string
	RunAt     time.Time
	UpdatedAt time.Time
}

type state struct {
	reservations map[uuid.UUID]reservation.Record
	idempotency  map[idemKey]shared.IdempotencyRecord
	jobs         map[uuid.UUID]Job
	jobOrder     []uuid.UUID
}

func (s state) clone() state {
	return state{
		reservations: maps.Clone(s.reservations),
		idempotency:  maps.Clone(s.idempotency),
		jobs:         maps.Clone(s.jobs),
		jobOrder:     slices.Clone(s.jobOrder),
	}
}

type Store struct {
	mu        sync.Mutex
	st        state
	resources map[uuid.UUID]shared.ResourceSnapshot

	failEnqueue bool
	failWithin  error
	failNth     int
	failNthErr  error
}

func New() *Store {
	return &Store{
		st: state{
			reservations: make(map[uuid.UUID]reservation.Record),
			idempotency:  make(map[idemKey]shared.IdempotencyRecord),
			jobs:         make(map[uuid.UUID]Job),
		},
		resources: make(map[uuid.UUID]shared.ResourceSnapshot),
	}
}

func (s *Store) AddResource(r shared.ResourceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
}

// FailEnqueue makes every notification Enqueue fail.
func (s *Store) FailEnqueue(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEnqueue = fail
}

// FailWithin makes every subsequent transaction fail with err; nil clears it.
func (s *Store) FailWithin(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWithin = err
}

// FailNthWithin makes the nth transaction from now (counting from 1) fail
// with err. Only that one transaction fails.
func (s *Store) FailNthWithin(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNth, s.failNthErr = n, err
}

func (s *Store) Reservation(id uuid.UUID) (reservation.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.st.reservations[id]
	return rec, ok
}

func (s *Store) Reservations() []reservation.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.st.reservations))
}

// Jobs returns the outbox in insertion order.
func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.st.jobOrder))
	for _, id := range s.st.jobOrder {
		out = append(out, s.st.jobs[id])
	}
	return out
}

func (s *Store) JobsOfKind(kind string) []Job {
	var out []Job
	for _, j := range s.Jobs() {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) IdempotencyRecord(key, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.st.idempotency[idemKey{key, userID}]
	return rec, ok
}

// SetExpiresAt rewrites a reservation's hold deadline.
func (s *Store) SetExpiresAt(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.st.reservations[id]
	rec.ExpiresAt = &at
	s.st.reservations[id] = rec
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWithin != nil {
		return s.failWithin
	}
	if s.failNth > 0 {
		s.failNth--
		if s.failNth == 0 {
			return s.failNthErr
		}
	}

	snapshot := s.st.clone()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return lockedReads{s: s}
}

type lockedReads struct{ s *Store }

func (r lockedReads) ResourceByID(_ context.Context, id uuid.UUID) (*shared.ResourceSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.resourceByID(id)
}

func (s *Store) resourceByID(id uuid.UUID) (*shared.ResourceSnapshot, error) {
	res, ok := s.resources[id]
	if !ok {
		return nil, infra.WrapRepoErr("resource not found", nil, infra.KindNotFound)
	}
	return &res, nil
}

// memTx runs with Store.mu held.
type memTx struct{ s *Store }

func (t *memTx) Reservations() shared.ReservationRepository   { return reservationRepo{t.s} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return idempotencyRepo{t.s} }
func (t *memTx) Notifications() shared.NotificationRepository { return notificationRepo{t.s} }
func (t *memTx) Reads() shared.CommandReads                   { return txReads{t.s} }

func (t *memTx) Savepoint(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	snapshot := t.s.st.clone()
	if err := fn(ctx, t); err != nil {
		t.s.st = snapshot
		return err
	}
	return nil
}

type txReads struct{ s *Store }

func (r txReads) ResourceByID(_ context.Context, id uuid.UUID) (*shared.ResourceSnapshot, error) {
	return r.s.resourceByID(id)
}

type reservationRepo struct{ s *Store }

func (r reservationRepo) TryReserve(_ context.Context, res *reservation.Reservation) error {
	if len(r.overlapping(res.Slot())) > 0 {
		return infra.WrapRepoErr("slot already reserved", nil, infra.KindConflict)
	}
	if _, exists := r.s.st.reservations[res.ID()]; exists {
		return infra.WrapRepoErr("reservation exists", nil, infra.KindDuplicateKey)
	}
	r.s.st.reservations[res.ID()] = res.Record()
	return nil
}

func (r reservationRepo) Release(_ context.Context, id uuid.UUID, reason reservation.CancelReason, at time.Time) (bool, error) {
	rec, ok := r.s.st.reservations[id]
	if !ok || !rec.Status.IsActive() {
		return false, nil
	}
	rec.Status = reservation.StatusCancelled
	rec.CancelReason = reason
	rec.ExpiresAt = nil
	rec.UpdatedAt = at
	r.s.st.reservations[id] = rec
	return true, nil
}

func (r reservationRepo) FindOverlapping(_ context.Context, slot reservation.Slot) ([]*reservation.Reservation, error) {
	recs := r.overlapping(slot)
	out := make([]*reservation.Reservation, len(recs))
	for i, rec := range recs {
		out[i] = reservation.Reconstruct(rec)
	}
	return out, nil
}

func (r reservationRepo) overlapping(slot reservation.Slot) []reservation.Record {
	var out []reservation.Record
	for _, rec := range r.s.st.reservations {
		if rec.Status.IsActive() && rec.Slot.Overlaps(slot) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b reservation.Record) int {
		return a.Slot.Start().Minutes() - b.Slot.Start().Minutes()
	})
	return out
}

func (r reservationRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	rec, ok := r.s.st.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return reservation.Reconstruct(rec), nil
}

func (r reservationRepo) GetByIntentForUpdate(_ context.Context, intentID string) (*reservation.Reservation, error) {
	for _, rec := range r.s.st.reservations {
		if intentID != "" && rec.PaymentIntentID == intentID {
			return reservation.Reconstruct(rec), nil
		}
	}
	return nil, infra.WrapRepoErr("reservation not found for intent", nil, infra.KindNotFound)
}

func (r reservationRepo) Save(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.s.st.reservations[res.ID()]; !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	r.s.st.reservations[res.ID()] = res.Record()
	return nil
}

func (r reservationRepo) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]shared.ExpiryEntry, error) {
	var out []shared.ExpiryEntry
	for _, e := range r.pendingExpiries() {
		if e.ExpiresAt.Before(now) {
			out = append(out, e)
		}
	}
	return truncate(out, limit), nil
}

func (r reservationRepo) ListPendingExpiries(_ context.Context, limit int) ([]shared.ExpiryEntry, error) {
	return truncate(r.pendingExpiries(), limit), nil
}

func (r reservationRepo) pendingExpiries() []shared.ExpiryEntry {
	var out []shared.ExpiryEntry
	for _, rec := range r.s.st.reservations {
		if rec.Status == reservation.StatusPending && rec.ExpiresAt != nil {
			out = append(out, shared.ExpiryEntry{ReservationID: rec.ID, ExpiresAt: *rec.ExpiresAt})
		}
	}
	slices.SortFunc(out, func(a, b shared.ExpiryEntry) int { return a.ExpiresAt.Compare(b.ExpiresAt) })
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

type idempotencyRepo struct{ s *Store }

func (r idempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt, now time.Time) (bool, error) {
	k := idemKey{key, userID}
	if existing, ok := r.s.st.idempotency[k]; ok && existing.ExpiresAt.After(now) {
		return false, nil
	}
	r.s.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r idempotencyRepo) Get(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.s.st.idempotency[idemKey{key, userID}]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (r idempotencyRepo) Complete(_ context.Context, key, userID, reservationID uuid.UUID) error {
	k := idemKey{key, userID}
	rec, ok := r.s.st.idempotency[k]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultReservationID = &reservationID
	r.s.st.idempotency[k] = rec
	return nil
}

func (r idempotencyRepo) Delete(_ context.Context, key, userID uuid.UUID) error {
	delete(r.s.st.idempotency, idemKey{key, userID})
	return nil
}

func (r idempotencyRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.s.st.idempotency {
		if !rec.ExpiresAt.After(now) {
			delete(r.s.st.idempotency, k)
			n++
		}
	}
	return n, nil
}

type notificationRepo struct{ s *Store }

var errEnqueueFailed = errs.New("memstore: enqueue failed")

func (r notificationRepo) Enqueue(_ context.Context, job shared.NewNotificationJob) error {
	if r.s.failEnqueue {
		return infra.WrapRepoErr("failed to enqueue notification", errEnqueueFailed)
	}
	id := uuid.New()
	r.s.st.jobs[id] = Job{
		ID:      id,
		Kind:    job.Kind,
		Topic:   job.Topic,
		Payload: job.Payload,
		Status:  shared.JobQueued,
		RunAt:   job.RunAt,
	}
	r.s.st.jobOrder = append(r.s.st.jobOrder, id)
	return nil
}

func (r notificationRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	var out []shared.NotificationJob
	for _, id := range r.s.st.jobOrder {
		j := r.s.st.jobs[id]
		if j.Status != shared.JobQueued || j.RunAt.After(now) {
			continue
		}
		j.Status = shared.JobSending
		j.Attempts++
		j.UpdatedAt = now
		r.s.st.jobs[id] = j
		out = append(out, shared.NotificationJob{
			ID:       j.ID,
			Kind:     j.Kind,
			Topic:    j.Topic,
			Payload:  j.Payload,
			Attempts: j.Attempts,
			RunAt:    j.RunAt,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r notificationRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(j *Job) { j.Status = shared.JobSent; j.LastError = "" })
}

func (r notificationRepo) Reschedule(_ context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	return r.update(id, func(j *Job) {
		j.Status = shared.JobQueued
		j.RunAt = runAt
		j.LastError = lastError
	})
}

func (r notificationRepo) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	return r.update(id, func(j *Job) { j.Status = shared.JobFailed; j.LastError = lastError })
}

func (r notificationRepo) RequeueStale(_ context.Context, staleBefore time.Time) (int64, error) {
	var n int64
	for id, j := range r.s.st.jobs {
		if j.Status == shared.JobSending && j.UpdatedAt.Before(staleBefore) {
			j.Status = shared.JobQueued
			r.s.st.jobs[id] = j
			n++
		}
	}
	return n, nil
}

func (r notificationRepo) update(id uuid.UUID, fn func(j *Job)) error {
	j, ok := r.s.st.jobs[id]
	if !ok {
		return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
	}
	fn(&j)
	r.s.st.jobs[id] = j
	return nil
}
