package reservation

import (
	"fmt"

	"github.com/google/uuid"
)

// Actor is the caller of a transition as established by the session layer.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
	System bool
}

func UserActor(userID uuid.UUID, admin bool) Actor {
	return Actor{UserID: userID, Admin: admin}
}

// SystemActor drives transitions originating from the gateway or the reaper.
func SystemActor() Actor {
	return Actor{System: true}
}

// Authorize is the single capability check consumed by every transition entry point.
//
//	view:     reservation owner, resource owner, admin, system
//	confirm:  reservation owner, admin, system
//	cancel:   reservation owner, admin
//	complete: resource owner, admin
//	expire:   system only
func Authorize(action Action, r *Reservation, actor Actor, resourceOwnerID uuid.UUID) error {
	isOwner := actor.UserID != uuid.Nil && actor.UserID == r.userID
	isResourceOwner := actor.UserID != uuid.Nil && resourceOwnerID != uuid.Nil && actor.UserID == resourceOwnerID

	var allowed bool
	switch action {
	case ActionView:
		allowed = actor.System || actor.Admin || isOwner || isResourceOwner
	case ActionConfirm:
		allowed = actor.System || actor.Admin || isOwner
	case ActionCancel:
		allowed = actor.Admin || isOwner
	case ActionComplete:
		allowed = actor.Admin || isResourceOwner
	case ActionExpire:
		allowed = actor.System
	}

	if !allowed {
		return fmt.Errorf("%w: %s on reservation %s", ErrForbidden, action, r.id)
	}
	return nil
}

// CancelReasonFor distinguishes an owner's cancellation from an administrative override.
func CancelReasonFor(r *Reservation, actor Actor) CancelReason {
	if actor.Admin && actor.UserID != r.userID {
		return ReasonAdminCancelled
	}
	return ReasonUserCancelled
}
