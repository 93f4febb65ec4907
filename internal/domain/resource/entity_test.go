//go:build unit

package resource_test

import (
	"strings"
	"testing"

	"court-booking/internal/domain/resource"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		r, err := resource.NewResource(uuid.New(), uuid.New(), uuid.New(), "  Court 1 ", 1500, " JPY")
		require.NoError(t, err)
		assert.Equal(t, "Court 1", r.Name())
		assert.Equal(t, "jpy", r.Currency())
		assert.Equal(t, int64(1500), r.UnitPrice())
	})

	tests := []struct {
		name      string
		rname     string
		unitPrice int64
		currency  string
		errIs     error
	}{
		{name: "empty name", rname: "  ", unitPrice: 100, currency: "jpy", errIs: resource.ErrEmptyResourceName},
		{name: "long name", rname: strings.Repeat("a", resource.MaxResourceNameLength+1), unitPrice: 100, currency: "jpy", errIs: resource.ErrResourceNameTooLong},
		{name: "negative price", rname: "Court", unitPrice: -1, currency: "jpy", errIs: resource.ErrNegativeUnitPrice},
		{name: "bad currency", rname: "Court", unitPrice: 100, currency: "yen!", errIs: resource.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resource.NewResource(uuid.New(), uuid.New(), uuid.New(), tt.rname, tt.unitPrice, tt.currency)
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}
