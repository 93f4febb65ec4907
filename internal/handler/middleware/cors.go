package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"court-booking/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Browser clients need these regardless of deployment config: the booking
// flow sends an idempotency key and reads Location and the replay marker.
var (
	requiredAllowHeaders  = []string{"Authorization", "Content-Type", "Idempotency-Key", requestIDHeader}
	requiredExposeHeaders = []string{"Location", "Idempotent-Replayed", "Retry-After", requestIDHeader, "WWW-Authenticate"}
	requiredMethods       = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
)

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     mergeHeaders(cfg.AllowMethods, requiredMethods),
		AllowHeaders:     mergeHeaders(cfg.AllowHeaders, requiredAllowHeaders),
		ExposeHeaders:    mergeHeaders(cfg.ExposeHeaders, requiredExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", cfg.AllowOrigins,
		"expose_headers", corsCfg.ExposeHeaders)
	return cors.New(corsCfg)
}

// mergeHeaders appends each required entry that is not already configured,
// comparing case-insensitively.
func mergeHeaders(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, r := range required {
		if !slices.ContainsFunc(out, func(v string) bool { return strings.EqualFold(strings.TrimSpace(v), r) }) {
			out = append(out, r)
		}
	}
	return out
}
