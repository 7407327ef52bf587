// Package middleware holds gin middleware shared by the admin HTTP
// surface.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles the admin surface per caller, keyed by the
// caller-supplied X-Admin-Client-ID header so multiple admin processes
// behind one NAT don't starve each other; callers without the header are
// keyed by client IP.
type RateLimiter struct {
	clients map[string]time.Time
	mu      sync.Mutex
	limit   time.Duration
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]time.Time),
		limit:   limit,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader("X-Admin-Client-ID")
		if clientID == "" {
			clientID = c.ClientIP()
		}
		r.mu.Lock()
		last, exists := r.clients[clientID]
		if exists && time.Since(last) < r.limit {
			r.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		r.clients[clientID] = time.Now()
		r.mu.Unlock()
		c.Next()
	}
}
