package bootstrap

import (
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/pkg/jwt"
	"court-booking/internal/usecase"

	"go.uber.org/fx"
)

// JWTModule authenticates API callers. The reap command runs without it.
var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
		usecase.NewTokenValidator,
	),
)

func NewJWTService(cfg config.Config) (*jwt.Service, error) {
	if cfg.JWT.Secret == "" {
		return nil, errs.New("JWT_SECRET must not be empty")
	}
	if cfg.JWT.Duration <= 0 {
		return nil, errs.Newf("JWT_DURATION must be positive, got %s", cfg.JWT.Duration)
	}
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration), nil
}
