//go:build unit

package reservation_test

import (
	"slices"
	"testing"

	"court-booking/internal/domain/reservation"
	"court-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	b := builder.NewReservationBuilder()
	r, err := b.BuildDomain()
	require.NoError(t, err)

	actors := map[string]reservation.Actor{
		"owner":          reservation.UserActor(b.UserID, false),
		"resource owner": reservation.UserActor(b.OwnerID, false),
		"admin":          reservation.UserActor(uuid.New(), true),
		"stranger":       reservation.UserActor(uuid.New(), false),
		"system":         reservation.SystemActor(),
	}

	allowed := map[reservation.Action][]string{
		reservation.ActionView:     {"owner", "resource owner", "admin", "system"},
		reservation.ActionConfirm:  {"owner", "admin", "system"},
		reservation.ActionCancel:   {"owner", "admin"},
		reservation.ActionComplete: {"resource owner", "admin"},
		reservation.ActionExpire:   {"system"},
	}

	for action, who := range allowed {
		for name, actor := range actors {
			t.Run(string(action)+"/"+name, func(t *testing.T) {
				err := reservation.Authorize(action, r, actor, b.OwnerID)
				if slices.Contains(who, name) {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, reservation.ErrForbidden)
				}
			})
		}
	}
}

func TestAuthorize_UnknownResourceOwner(t *testing.T) {
	b := builder.NewReservationBuilder()
	r, err := b.BuildDomain()
	require.NoError(t, err)

	err = reservation.Authorize(reservation.ActionComplete, r, reservation.UserActor(uuid.Nil, false), uuid.Nil)
	assert.ErrorIs(t, err, reservation.ErrForbidden, "nil ids never match")
}

func TestCancelReasonFor(t *testing.T) {
	b := builder.NewReservationBuilder()
	r, err := b.BuildDomain()
	require.NoError(t, err)

	assert.Equal(t, reservation.ReasonUserCancelled, reservation.CancelReasonFor(r, reservation.UserActor(b.UserID, false)))
	assert.Equal(t, reservation.ReasonUserCancelled, reservation.CancelReasonFor(r, reservation.UserActor(b.UserID, true)))
	assert.Equal(t, reservation.ReasonAdminCancelled, reservation.CancelReasonFor(r, reservation.UserActor(uuid.New(), true)))
}
