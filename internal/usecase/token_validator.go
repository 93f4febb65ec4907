package usecase

import (
	"time"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/domain/user"
	"court-booking/internal/pkg/jwt"

	"github.com/google/uuid"
)

// Principal is the authenticated caller carried by an access token.
type Principal struct {
	UserID    uuid.UUID
	Role      user.Role
	ExpiresAt time.Time
}

func (p Principal) Actor() reservation.Actor {
	return reservation.UserActor(p.UserID, p.Role.IsAdmin())
}

type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

type jwtTokenValidator struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwtService: jwtService}
}

func (v *jwtTokenValidator) ValidateToken(tokenString string) (Principal, error) {
	claims, err := v.jwtService.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	// jwt.Service already rejects unknown roles; this keeps the type honest.
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}

	p := Principal{UserID: claims.UserID, Role: role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
