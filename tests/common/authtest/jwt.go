//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"court-booking/internal/domain/user"
	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Caller is a test identity together with a bearer token for it.
type Caller struct {
	ID    uuid.UUID
	Role  user.Role
	Token string
}

type JWTHelper struct {
	svc *jwt.Service
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{svc: jwt.NewService(cfg.Secret, cfg.Duration), cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.svc.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

// Member mints a fresh member identity.
func (h *JWTHelper) Member(t *testing.T) Caller {
	t.Helper()
	return h.caller(t, user.RoleMember)
}

func (h *JWTHelper) Admin(t *testing.T) Caller {
	t.Helper()
	return h.caller(t, user.RoleAdmin)
}

// ExpiredToken is signed with the right key but lapsed well past the
// validator's leeway.
func (h *JWTHelper) ExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, -time.Hour).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) caller(t *testing.T, role user.Role) Caller {
	id := uuid.New()
	return Caller{ID: id, Role: role, Token: h.GenerateToken(t, id, role)}
}
