//go:build unit

package reservation_test

import (
	"testing"

	"court-booking/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourlyPriceCalculator(t *testing.T) {
	calc := reservation.NewHourlyPriceCalculator()

	tests := []struct {
		name       string
		unitPrice  int64
		start, end string
		want       int64
	}{
		{name: "one and a half hours", unitPrice: 500, start: "10:00", end: "11:30", want: 750},
		{name: "whole hour", unitPrice: 500, start: "10:00", end: "11:00", want: 500},
		{name: "rounds half up", unitPrice: 100, start: "10:00", end: "10:03", want: 5},
		{name: "rounds down", unitPrice: 100, start: "10:00", end: "10:02", want: 3},
		{name: "whole day", unitPrice: 1000, start: "00:00", end: "24:00", want: 24000},
		{name: "free court", unitPrice: 0, start: "08:00", end: "09:00", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := reservation.NewMoney(tt.unitPrice)
			require.NoError(t, err)

			got, err := calc.Calculate(unit, slot(t, uuid.New(), "2026-05-02", tt.start, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount())
		})
	}

	t.Run("zero length slot is rejected", func(t *testing.T) {
		unit, _ := reservation.NewMoney(500)
		_, err := calc.Calculate(unit, reservation.Slot{})
		assert.ErrorIs(t, err, reservation.ErrInvalidSlot)

		_, err = reservation.NewSlot(uuid.New(), slot(t, uuid.New(), "2026-05-02", "14:00", "15:00").Date(), 840, 840)
		assert.ErrorIs(t, err, reservation.ErrInvalidSlot)
	})
}
