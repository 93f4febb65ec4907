package middleware

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"court-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 64
)

// quietPaths are logged at debug level so health checks and scrapes stay out of the log.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
	"/ready":   true,
}

type requestIDCtxKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// requestIDHandler stamps request_id on every record logged with a request
// context, including those from use cases and the unit of work.
type requestIDHandler struct {
	slog.Handler
}

func (h requestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFrom(ctx); id != "" {
		r.AddAttrs(slog.String(requestIDKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestIDHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestIDHandler) WithGroup(name string) slog.Handler {
	return requestIDHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds the process logger and installs it as slog's default.
// Release mode logs JSON; anything else logs text.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	zone := time.FixedZone(cfg.TimeZone, cfg.TimeZoneOffset)
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().In(zone).Format(cfg.TimeFormat))
			}
			return a
		},
	}

	var base slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if gin.Mode() == gin.ReleaseMode {
		base = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(requestIDHandler{base})
	slog.SetDefault(logger)
	return logger
}

// RequestLogging assigns or propagates X-Request-ID and logs one line per
// request once the handler chain has finished.
func RequestLogging(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = newRequestID()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		ctx := c.Request.Context()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
		}
		if key := c.GetHeader("Idempotency-Key"); key != "" {
			attrs = append(attrs, slog.String("idempotency_key", key))
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "request started", attrs...)

		c.Next()

		status := c.Writer.Status()
		attrs = append(attrs,
			slog.String("route", c.FullPath()),
			slog.Int("status_code", status),
			slog.Duration("duration", time.Since(start)),
		)
		if id := c.Param("id"); id != "" {
			attrs = append(attrs, slog.String("target_id", id))
		}
		// Auth runs inside the route group, so identity is only known after Next.
		if id, ok := GetUserID(c); ok && id != uuid.Nil {
			role, _ := GetUserRole(c)
			attrs = append(attrs, slog.String("user_id", id.String()), slog.String("role", role.String()))
		}
		if c.Writer.Header().Get("Idempotent-Replayed") == "true" {
			attrs = append(attrs, slog.Bool("replayed", true))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logger.LogAttrs(ctx, completionLevel(c.FullPath(), status), "request completed", attrs...)
	}
}

func completionLevel(route string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status == 429 || status == 401:
		// Expected under load and from expired sessions.
		return slog.LevelInfo
	case status >= 400:
		return slog.LevelWarn
	case quietPaths[route]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// newRequestID is time-ordered so IDs sort with the log.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
