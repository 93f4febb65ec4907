package middleware

import (
	"errors"
	"net/http"
	"sync"

	"court-booking/internal/handler/httperr"
	"court-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

// RateLimiter keeps one token bucket per authenticated user, falling back to
// the client IP.
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	cfg      config.RateLimitConfig
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg}
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + userID.String()
		}

		if !l.limiter(key).Allow() {
			c.Header("Retry-After", "1")
			httperr.AbortWithCode(c, http.StatusTooManyRequests, httperr.CodeRateLimited, errRateLimited, "Too many requests")
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(l.cfg.RPS)
	if l.cfg.RPS <= 0 {
		limit = rate.Inf
	}

	lim := rate.NewLimiter(limit, burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
