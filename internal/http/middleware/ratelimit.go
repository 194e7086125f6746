package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// minIdle is the shortest time a bucket is kept after its last request.
const minIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	retry    int
	idle     time.Duration
	now      func() time.Time
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		retry:    (60 + perMinute - 1) / perMinute,
		idle:     idleWindow(perMinute, burst),
		now:      time.Now,
	}
}

// idleWindow is how long a drained bucket takes to refill, floored at minIdle.
// Dropping a bucket earlier would hand the client a fresh burst.
func idleWindow(perMinute, burst int) time.Duration {
	refill := time.Duration(burst) * time.Minute / time.Duration(perMinute)
	if refill < minIdle {
		return minIdle
	}
	return refill
}

// Allow consumes a token for key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

// Cleanup drops buckets idle for longer than the refill window and returns how many were removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idle)
	removed := 0
	for k, cl := range rl.limiters {
		if cl.seen.Before(cutoff) {
			delete(rl.limiters, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Handler limits requests per client IP and answers 429 once the bucket is empty.
func (rl *RateLimiter) Handler() fiber.Handler {
	retryAfter := strconv.Itoa(rl.retry)
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
