package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiters keeps one token bucket per caller. Buckets idle longer than
// the cleanup window are dropped to bound memory.
type rateLimiters struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	lastSeen map[string]time.Time
}

type bucket struct {
	limiter *rate.Limiter
}

func newRateLimiters(perMinute int) *rateLimiters {
	return &rateLimiters{
		buckets:  make(map[string]*bucket),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (r *rateLimiters) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	r.lastSeen[key] = time.Now()

	// opportunistic cleanup of idle buckets
	if len(r.buckets) > 1024 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for k, seen := range r.lastSeen {
			if seen.Before(cutoff) {
				delete(r.buckets, k)
				delete(r.lastSeen, k)
			}
		}
	}

	return b.limiter.Allow()
}

// RateLimit creates a per-caller rate limiting middleware. Callers are keyed
// by verified identity when available, client IP otherwise. Zero or negative
// perMinute disables limiting.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newRateLimiters(perMinute)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if ident := identityFromContext(c); !ident.IsZero() {
			key = "user:" + ident.UID()
		}

		if !limiters.allow(key) {
			c.JSON(http.StatusTooManyRequests, errResp(CodeRateLimited, "rate limit exceeded"))
			c.Abort()
			return
		}
		c.Next()
	}
}
