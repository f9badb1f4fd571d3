package config

import "time"

// RateLimitConfig controls the fixed-window limiter applied to the auth
// endpoints (signup, login, forgotPassword). Max requests per Window are
// allowed per client IP; anything above gets a 429.
type RateLimitConfig struct {
	Enabled bool
	Max     int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults allow 100 requests per hour per IP.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Max:     atoi(getenv("RATE_LIMIT_MAX", "100")),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1h")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "ratelimit"),
	}
}
