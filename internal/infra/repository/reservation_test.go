//go:build unit

package repository

import (
	"context"
	"errors"
	"testing"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/infra"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQueries struct {
	mock.Mock
}

func (m *MockQueries) LockReservationScope(ctx context.Context, db sqlc.DBTX, lockKey string) error {
	args := m.Called(ctx, db, lockKey)
	return args.Error(0)
}

func (m *MockQueries) ListOverlappingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListOverlappingReservationsParams) ([]sqlc.Reservations, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlc.Reservations), args.Error(1)
}

func (m *MockQueries) InsertReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertReservationParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockQueries) GetReservationForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservations, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Reservations), args.Error(1)
}

func (m *MockQueries) GetReservationByIntentForUpdate(ctx context.Context, db sqlc.DBTX, paymentIntentID pgtype.Text) (sqlc.Reservations, error) {
	args := m.Called(ctx, db, paymentIntentID)
	return args.Get(0).(sqlc.Reservations), args.Error(1)
}

func (m *MockQueries) UpdateReservationState(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateReservationStateParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueries) ReleaseReservation(ctx context.Context, db sqlc.DBTX, arg sqlc.ReleaseReservationParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueries) ListExpiredPendingReservations(ctx context.Context, db sqlc.DBTX, arg sqlc.ListExpiredPendingReservationsParams) ([]sqlc.ListExpiredPendingReservationsRow, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlc.ListExpiredPendingReservationsRow), args.Error(1)
}

func (m *MockQueries) ListPendingReservationExpiries(ctx context.Context, db sqlc.DBTX, limit int32) ([]sqlc.ListPendingReservationExpiriesRow, error) {
	args := m.Called(ctx, db, limit)
	return args.Get(0).([]sqlc.ListPendingReservationExpiriesRow), args.Error(1)
}

func TestTryReserve(t *testing.T) {
	res, err := builder.NewReservationBuilder().BuildDomain()
	require.NoError(t, err)
	lockKey := res.Slot().LockKey()

	tests := []struct {
		name        string
		lockErr     error
		overlapping []sqlc.Reservations
		insertErr   error
		wantKind    infra.RepositoryErrorKind
		wantInsert  bool
	}{
		{
			name:        "success - free slot is inserted",
			overlapping: []sqlc.Reservations{},
			wantInsert:  true,
		},
		{
			name:        "conflict - overlapping hold exists",
			overlapping: []sqlc.Reservations{builder.NewReservationBuilder().BuildInfra()},
			wantKind:    infra.KindConflict,
		},
		{
			name:     "failure - lock not acquired",
			lockErr:  errors.New("connection reset"),
			wantKind: infra.KindDBFailure,
		},
		{
			name:        "conflict - exclusion constraint on insert",
			overlapping: []sqlc.Reservations{},
			insertErr:   exclusionViolation(),
			wantKind:    infra.KindConflict,
			wantInsert:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockQueries)
			q.On("LockReservationScope", mock.Anything, mock.Anything, lockKey).Return(tt.lockErr)
			if tt.lockErr == nil {
				q.On("ListOverlappingReservations", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.ListOverlappingReservationsParams) bool {
					return p.ResourceID == res.ResourceID() && p.StartMinute == 600 && p.EndMinute == 690
				})).Return(tt.overlapping, nil)
			}
			if tt.wantInsert {
				q.On("InsertReservation", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.InsertReservationParams) bool {
					return p.ID == res.ID() && p.Status == "pending" && p.ExpiresAt.Valid
				})).Return(tt.insertErr)
			}

			repo := NewReservationRepository(q, nil)
			err := repo.TryReserve(context.Background(), res)

			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, infra.IsKind(err, tt.wantKind), "got %v", err)
			}
			if !tt.wantInsert {
				q.AssertNotCalled(t, "InsertReservation", mock.Anything, mock.Anything, mock.Anything)
			}
			q.AssertExpectations(t)
		})
	}
}

func TestGetForUpdate(t *testing.T) {
	row := builder.NewReservationBuilder().BuildInfra()

	t.Run("success - row is reconstructed", func(t *testing.T) {
		q := new(MockQueries)
		q.On("GetReservationForUpdate", mock.Anything, mock.Anything, row.ID).Return(row, nil)

		res, err := NewReservationRepository(q, nil).GetForUpdate(context.Background(), row.ID)

		require.NoError(t, err)
		assert.Equal(t, row.ID, res.ID())
		assert.Equal(t, reservation.StatusPending, res.Status())
		assert.Equal(t, "10:00", res.Slot().Start().String())
		assert.Equal(t, "11:30", res.Slot().End().String())
		assert.Equal(t, row.TotalPrice, res.TotalPrice().Amount())
		require.NotNil(t, res.ExpiresAt())
		assert.True(t, row.ExpiresAt.Time.Equal(*res.ExpiresAt()))
	})

	t.Run("not found - no rows", func(t *testing.T) {
		q := new(MockQueries)
		q.On("GetReservationForUpdate", mock.Anything, mock.Anything, row.ID).Return(sqlc.Reservations{}, pgx.ErrNoRows)

		_, err := NewReservationRepository(q, nil).GetForUpdate(context.Background(), row.ID)

		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("failure - corrupt status", func(t *testing.T) {
		broken := row
		broken.Status = "archived"
		q := new(MockQueries)
		q.On("GetReservationForUpdate", mock.Anything, mock.Anything, row.ID).Return(broken, nil)

		_, err := NewReservationRepository(q, nil).GetForUpdate(context.Background(), row.ID)

		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

func TestSave(t *testing.T) {
	res, err := builder.NewReservationBuilder().BuildDomain()
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		q := new(MockQueries)
		q.On("UpdateReservationState", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

		assert.NoError(t, NewReservationRepository(q, nil).Save(context.Background(), res))
	})

	t.Run("not found - nothing updated", func(t *testing.T) {
		q := new(MockQueries)
		q.On("UpdateReservationState", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

		err := NewReservationRepository(q, nil).Save(context.Background(), res)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, int32(100), clampLimit(0))
	assert.Equal(t, int32(25), clampLimit(25))
	assert.Equal(t, int32(10000), clampLimit(1_000_000))
}

func exclusionViolation() error {
	return &pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"}
}
