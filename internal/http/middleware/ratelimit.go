package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Route groups used as the "group" label on rejection metrics.
const (
	GroupAdmin  = "admin"
	GroupPublic = "public"
)

const (
	defaultIdleTTL = 10 * time.Minute
	maxRetryAfter  = 60 // seconds
)

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyByCaller keys authenticated admin requests by caller identity and
// everything else by client IP, in separate namespaces.
func KeyByCaller() KeyFunc {
	return func(c *gin.Context) string {
		if id := CallerID(c); id != anonymousCaller {
			return "caller:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per
// key. Buckets idle for longer than the idle TTL are swept at most once per
// TTL. Safe for concurrent use.
type RateLimiter struct {
	group string
	limit rate.Limit
	burst int
	key   KeyFunc

	mu        sync.Mutex
	buckets   map[string]*bucket
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter builds a limiter for one route group. burst is raised to 1
// when lower.
func NewRateLimiter(group string, rps float64, burst int, key KeyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if key == nil {
		key = KeyByCaller()
	}
	return &RateLimiter{
		group:     group,
		limit:     rate.Limit(rps),
		burst:     burst,
		key:       key,
		buckets:   make(map[string]*bucket),
		idleTTL:   defaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// limiter returns the bucket for key, creating it on first use.
func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// size reports the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// IsRateBypass reports whether the request was marked as an idempotent
// replay, which does not consume tokens.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}

// Handler enforces the limit. Rejected requests get 429 rate_limited with a
// Retry-After derived from when the next token is due.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		lim := rl.limiter(rl.key(c), now)
		res := lim.ReserveN(now, 1)
		delay := res.DelayFrom(now)
		if res.OK() && delay == 0 {
			c.Next()
			return
		}
		res.CancelAt(now)

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
		reject(c, rl.group, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}

// retryAfterSeconds rounds delay up to whole seconds within [1, 60].
func retryAfterSeconds(delay time.Duration) int {
	if delay == rate.InfDuration {
		return maxRetryAfter
	}
	s := int(math.Ceil(delay.Seconds()))
	if s < 1 {
		return 1
	}
	if s > maxRetryAfter {
		return maxRetryAfter
	}
	return s
}
