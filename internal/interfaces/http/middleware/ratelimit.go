package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps requests per key to a fixed number within a rolling
// window. State lives in process memory, so each API instance enforces
// its own budget.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	done    chan struct{}
}

type bucket struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter builds a limiter allowing limit requests per window
// and starts a background sweep of stale keys.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, b := range rl.buckets {
				if now.Sub(b.windowStart) > rl.window*2 {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the background sweep.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Allow consumes one request from the key's budget and reports whether
// it fit in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}
	if b.count < rl.limit {
		b.count++
		return true
	}
	return false
}

// Remaining reports how many requests the key has left in its window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || time.Since(b.windowStart) >= rl.window {
		return rl.limit
	}
	return rl.limit - b.count
}

func (rl *RateLimiter) setQuotaHeaders(c *gin.Context, key string) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
}

func rejectRateLimited(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// RateLimit limits requests per client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			rejectRateLimited(c, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
			return
		}
		limiter.setQuotaHeaders(c, key)
		c.Next()
	}
}

// AuthRateLimit is the stricter limiter for login and refresh
// endpoints. Keys carry an auth prefix so the login budget is tracked
// apart from any general limiter sharing the store, and blocked
// responses tell the client when to retry.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + c.ClientIP()
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			rejectRateLimited(c, "AUTH_RATE_LIMIT_EXCEEDED", "Too many authentication attempts. Please try again later.")
			return
		}
		limiter.setQuotaHeaders(c, key)
		c.Next()
	}
}
