package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// submitLimiter caps donation submissions per client IP. The session guard
// already prevents duplicate orders within one session; this keeps a
// misbehaving client from minting sessions instead.
type submitLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
}

// SubmitRateLimit allows at most limit requests per IP per window.
func SubmitRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	l := &submitLimiter{counts: make(map[string]int), limit: limit}
	go func() {
		tick := time.NewTicker(window)
		defer tick.Stop()
		for range tick.C {
			l.mu.Lock()
			l.counts = make(map[string]int)
			l.mu.Unlock()
		}
	}()
	return func(c *gin.Context) {
		l.mu.Lock()
		l.counts[c.ClientIP()]++
		over := l.counts[c.ClientIP()] > l.limit
		l.mu.Unlock()
		if over {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
