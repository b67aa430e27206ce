package config

import "time"

// Rate limit configuration for a group of routes
type RateLimitConfig struct {
	Rate     int           // Tokens added per interval
	Burst    int           // Bucket capacity
	Interval time.Duration // Refill interval
}

// Global limit applied to every /api/v1 route
var DefaultRateLimitConfig = RateLimitConfig{
	Rate:     6000,
	Burst:    1000,
	Interval: time.Minute,
}

// Login attempts per IP, tight enough to slow down password guessing
var LoginRateLimitConfig = RateLimitConfig{
	Rate:     10,
	Burst:    10,
	Interval: time.Minute,
}

// Answer submissions per IP. Retries stay unlimited in the game rules,
// this only caps request floods.
var SubmitRateLimitConfig = RateLimitConfig{
	Rate:     60,
	Burst:    30,
	Interval: time.Minute,
}
