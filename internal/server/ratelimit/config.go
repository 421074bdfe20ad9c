package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Quota is a token bucket: Limit tokens refill evenly over Window and at most
// Burst can be spent at once. Burst defaults to Limit.
type Quota struct {
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	Quotas  map[Tier]Quota
	// IdleTTL drops a client's bucket after it has been unused this long; zero keeps buckets forever
	IdleTTL time.Duration
}

// DefaultConfig returns the built-in quotas. Generation is the expensive tier:
// every request there costs a search, a crawl and two model calls.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Quotas: map[Tier]Quota{
			TierGeneration: {Limit: 10, Window: time.Hour, Burst: 2},
			TierStatus:     {Limit: 120, Window: time.Minute, Burst: 20},
			TierRead:       {Limit: 300, Window: time.Minute, Burst: 30},
		},
		IdleTTL: time.Hour,
	}
}

// LoadConfig reads RATE_LIMIT_* environment variables over DefaultConfig.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool("RATE_LIMIT_ENABLED", true)
	if !cfg.Enabled {
		return cfg
	}

	generation := cfg.Quotas[TierGeneration]
	generation.Limit = envInt("RATE_LIMIT_GENERATE_LIMIT", generation.Limit)
	generation.Window = envDuration("RATE_LIMIT_GENERATE_WINDOW", generation.Window)
	cfg.Quotas[TierGeneration] = generation

	statusQuota := cfg.Quotas[TierStatus]
	statusQuota.Limit = envInt("RATE_LIMIT_STATUS_PER_MINUTE", statusQuota.Limit)
	cfg.Quotas[TierStatus] = statusQuota

	read := cfg.Quotas[TierRead]
	read.Limit = envInt("RATE_LIMIT_READ_PER_MINUTE", read.Limit)
	cfg.Quotas[TierRead] = read

	cfg.IdleTTL = envDuration("RATE_LIMIT_IDLE_TTL", cfg.IdleTTL)
	return cfg
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
