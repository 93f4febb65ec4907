//go:build unit

package readstore

import (
	"context"
	"errors"
	"testing"

	"court-booking/internal/infra"
	sqlc "court-booking/internal/infra/sqlc/generated"
	"court-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResourceQueries struct {
	mock.Mock
}

func (m *MockResourceQueries) GetResourceByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Resources, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Resources), args.Error(1)
}

func TestResourceFindByID(t *testing.T) {
	row := builder.NewReservationBuilder().BuildResourceInfra()

	tests := []struct {
		name      string
		mockRow   sqlc.Resources
		mockErr   error
		wantKind  infra.RepositoryErrorKind
		wantFound bool
	}{
		{name: "success", mockRow: row, wantFound: true},
		{name: "not found", mockErr: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "db failure", mockErr: errors.New("connection refused"), wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockResourceQueries)
			q.On("GetResourceByID", mock.Anything, mock.Anything, row.ID).Return(tt.mockRow, tt.mockErr)

			view, err := NewResourceReadStore(q, nil).FindByID(context.Background(), row.ID)

			if !tt.wantFound {
				assert.Nil(t, view)
				assert.True(t, infra.IsKind(err, tt.wantKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, row.ID, view.ID)
			assert.Equal(t, row.OwnerID, view.OwnerID)
			assert.Equal(t, row.UnitPrice, view.UnitPrice)
			assert.Equal(t, "jpy", view.Currency)
			q.AssertExpectations(t)
		})
	}
}
