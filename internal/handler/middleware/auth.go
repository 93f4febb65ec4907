package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"court-booking/internal/domain/reservation"
	"court-booking/internal/domain/user"
	"court-booking/internal/handler/httperr"
	"court-booking/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxUserIDKey    = "user_id"
	ctxUserRoleKey  = "user_role"
	ctxPrincipalKey = "principal"
)

const authRealm = "court-booking"

var errMissingToken = errors.New("missing bearer token")

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// RequireAuth accepts "Authorization: Bearer <jwt>" issued by the session
// service. Rejections carry an RFC 6750 WWW-Authenticate challenge.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
			httperr.AbortWithCode(c, http.StatusUnauthorized, httperr.CodeUnauthorized, errMissingToken, "Access token required")
			return
		}

		principal, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.InfoContext(c.Request.Context(), "token rejected", "error", err.Error())
			c.Header("WWW-Authenticate", `Bearer realm="`+authRealm+`", error="invalid_token"`)
			httperr.AbortWithCode(c, http.StatusUnauthorized, httperr.CodeUnauthorized, err, "Invalid or expired token")
			return
		}

		c.Set(ctxPrincipalKey, principal)
		c.Set(ctxUserIDKey, principal.UserID)
		c.Set(ctxUserRoleKey, principal.Role)
		c.Next()
	}
}

// bearerToken treats the scheme case-insensitively, as RFC 7235 requires.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	userRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}

	role, ok := userRole.(user.Role)
	return role, ok
}

// GetActor builds the reservation actor for the authenticated caller. Handlers
// mounted behind a test double that only sets user_id and user_role still work.
func GetActor(c *gin.Context) (reservation.Actor, bool) {
	if v, exists := c.Get(ctxPrincipalKey); exists {
		if p, ok := v.(usecase.Principal); ok && p.UserID != uuid.Nil {
			return p.Actor(), true
		}
	}
	userID, ok := GetUserID(c)
	if !ok || userID == uuid.Nil {
		return reservation.Actor{}, false
	}
	role, _ := GetUserRole(c)
	return reservation.UserActor(userID, role.IsAdmin()), true
}
