package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prithwish249/qr-attendence/internal/utils"
)

// RateLimiter throttles login attempts per client IP over a fixed one-minute
// window. Stale buckets are dropped opportunistically so the map does not
// grow with every IP ever seen.
type RateLimiter struct {
	limit int

	mu      sync.Mutex
	buckets map[string]*bucket
	sweep   time.Time
}

type bucket struct {
	count int
	reset time.Time
}

func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		buckets: make(map[string]*bucket),
		sweep:   time.Now().Add(time.Minute),
	}
}

func (rl *RateLimiter) take(ip string, now time.Time) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.sweep) {
		for key, b := range rl.buckets {
			if now.After(b.reset) {
				delete(rl.buckets, key)
			}
		}
		rl.sweep = now.Add(time.Minute)
	}

	b, ok := rl.buckets[ip]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(time.Minute)}
		rl.buckets[ip] = b
	}
	b.count++
	return b.count <= rl.limit, b.reset
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, reset := rl.take(c.ClientIP(), time.Now())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())))
			utils.RespondError(c, utils.NewAppError(http.StatusTooManyRequests, "RATE_LIMIT", "too many requests", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
