//go:build unit

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkAndIs(t *testing.T) {
	cause := errors.New("exclusion violation")
	err := Wrap(Mark(cause, ErrReservationConflict), "try reserve")

	assert.True(t, Is(err, ErrReservationConflict))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrReservationNotFound))
	assert.Equal(t, ErrGateway, Mark(nil, ErrGateway))
}

func TestHints(t *testing.T) {
	t.Run("collects hints through wrapping", func(t *testing.T) {
		err := WithHint(Mark(errors.New("bad time"), ErrInvalidSlot), `time "9:00" must be HH:MM`)
		err = Wrapf(err, "create reservation for %s", "court-1")

		assert.Equal(t, []string{`time "9:00" must be HH:MM`}, Hints(err))
		assert.True(t, Is(err, ErrInvalidSlot))
	})

	t.Run("plain errors carry none", func(t *testing.T) {
		assert.Empty(t, Hints(New("boom")))
		assert.Nil(t, Hints(nil))
		assert.Nil(t, WithHint(nil, "ignored"))
	})
}
