package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimit describes one named token bucket applied to a route group.
// Capacity is the burst size; one token is refilled every RefillInterval.
// TTL bounds how long idle bucket state lives in Redis.
type RateLimit struct {
	Name           string
	Capacity       int
	RefillInterval time.Duration
	TTL            time.Duration
}

// RateLimits groups the per-endpoint limits used by the service.  The
// defaults mirror what the entry queue can sustain: staff validation scans
// at roughly one per second, token issuance and partner login much slower.
type RateLimits struct {
	Enabled  bool
	Login    RateLimit // partner login attempts
	Issue    RateLimit // participant token generation
	Validate RateLimit // staff verify + validate scans
}

// LoadRateLimits reads rate limit settings from the environment, falling
// back to the defaults above.  Setting RATE_LIMIT_ENABLED=false disables
// limiting entirely (useful in tests and local development).
func LoadRateLimits() RateLimits {
	return RateLimits{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Login: RateLimit{
			Name:           "login",
			Capacity:       envInt("RATE_LIMIT_LOGIN_MAX", 10),
			RefillInterval: envDur("RATE_LIMIT_LOGIN_EVERY", 90*time.Second),
			TTL:            30 * time.Minute,
		},
		Issue: RateLimit{
			Name:           "issue",
			Capacity:       envInt("RATE_LIMIT_ISSUE_MAX", 10),
			RefillInterval: envDur("RATE_LIMIT_ISSUE_EVERY", 6*time.Second),
			TTL:            10 * time.Minute,
		},
		Validate: RateLimit{
			Name:           "validate",
			Capacity:       envInt("RATE_LIMIT_VALIDATE_MAX", 60),
			RefillInterval: envDur("RATE_LIMIT_VALIDATE_EVERY", time.Second),
			TTL:            10 * time.Minute,
		},
	}
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			return dur
		}
	}
	return d
}
