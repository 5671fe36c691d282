package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tazhibayda/notes-service/internal/metrics"
	"github.com/tazhibayda/notes-service/internal/security"
)

const (
	requestIDKey = "X-Request-ID"
	authUserKey  = "authUser"
)

// AuthUser is what the token middleware leaves in the request context.
type AuthUser struct {
	UID   string
	Email string
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()
		c.Next()
		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// AuthJWT verifies the access token and stores the claims in the context.
// The bearer header is always accepted; when the cookie session transport is
// configured the `token` cookie works as well, so the cookie handoff is
// usable end-to-end.
func AuthJWT(iss *security.Issuer, cookieFallback bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" && cookieFallback {
			tok, _ = c.Cookie("token")
		}
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := iss.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(authUserKey, AuthUser{UID: claims.Subject, Email: claims.Email})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// rateLimit throttles an endpoint per client IP via the Redis fixed-window
// counter. No Redis configured means no limiting.
func (h *Handler) rateLimit(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Redis == nil || h.RateLimitPerMin <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("rl:%s:%s", name, c.ClientIP())
		if !h.Redis.Allow(c.Request.Context(), key, h.RateLimitPerMin, time.Minute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
