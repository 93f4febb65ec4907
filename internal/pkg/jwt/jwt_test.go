//go:build unit

package jwt

import (
	"testing"
	"time"

	"court-booking/internal/domain/user"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func baseClaims(userID uuid.UUID) Claims {
	now := time.Now()
	return Claims{
		UserID: userID,
		Role:   user.RoleMember.String(),
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestService_RoundTrip(t *testing.T) {
	svc := NewService(secret, time.Hour)
	userID := uuid.New()

	tok, err := svc.GenerateToken(userID, user.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestService_GenerateRejectsUnknownRole(t *testing.T) {
	_, err := NewService(secret, time.Hour).GenerateToken(uuid.New(), user.Role("owner"))
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestService_ValidateToken(t *testing.T) {
	svc := NewService(secret, time.Hour)
	userID := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired beyond leeway",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-2 * clockSkew))
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "expired within leeway",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-clockSkew / 3))
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.ExpiresAt = nil
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.Issuer = "someone-else"
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "other HMAC algorithm",
			token: func(t *testing.T) string {
				return sign(t, gojwt.SigningMethodHS512, []byte(secret), baseClaims(userID))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, gojwt.SigningMethodHS256, []byte("other"), baseClaims(userID))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "subject does not match user",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.Subject = uuid.NewString()
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "unknown role",
			token: func(t *testing.T) string {
				c := baseClaims(userID)
				c.Role = "superuser"
				return sign(t, gojwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not.a.jwt" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
