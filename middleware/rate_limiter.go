package middleware

import (
	"net/http"
	"sync"
	"time"

	"riddlehunt/config"
	"riddlehunt/metrics"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-IP token bucket
type RateLimiter struct {
	name     string
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     int           // Tokens added per interval
	burst    int           // Burst capacity
	interval time.Duration // Refill interval
	now      func() time.Time

	lastSweep time.Time
}

// Visitors idle for this many refill intervals are forgotten
const idleIntervals = 10

type Visitor struct {
	tokens      int
	lastUpdated time.Time
}

func NewRateLimiter(name string, cfg config.RateLimitConfig) *RateLimiter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &RateLimiter{
		name:     name,
		visitors: make(map[string]*Visitor),
		rate:     cfg.Rate,
		burst:    cfg.Burst,
		interval: interval,
		now:      time.Now,
	}
}

// Allow consumes one token for ip and reports whether the request may proceed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.lastSweep.IsZero() {
		rl.lastSweep = now
	}
	if maxIdle := idleIntervals * rl.interval; now.Sub(rl.lastSweep) > maxIdle {
		rl.sweep(now, maxIdle)
	}

	visitor, exists := rl.visitors[ip]
	if !exists {
		visitor = &Visitor{tokens: rl.burst, lastUpdated: now}
		rl.visitors[ip] = visitor
	}

	// Refill tokens
	refill := int(now.Sub(visitor.lastUpdated) / rl.interval)
	if refill > 0 {
		visitor.tokens += refill * rl.rate
		if visitor.tokens > rl.burst {
			visitor.tokens = rl.burst
		}
		visitor.lastUpdated = visitor.lastUpdated.Add(time.Duration(refill) * rl.interval)
	}

	if visitor.tokens > 0 {
		visitor.tokens--
		return true
	}
	return false
}

// Cleanup forgets visitors idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(rl.now(), maxIdle)
}

func (rl *RateLimiter) sweep(now time.Time, maxIdle time.Duration) {
	rl.lastSweep = now
	for ip, visitor := range rl.visitors {
		if now.Sub(visitor.lastUpdated) > maxIdle {
			delete(rl.visitors, ip)
		}
	}
}

func RateLimiterMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimiterRejections.WithLabelValues(rl.name).Inc()

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
