package config

import (
	"time"
)

// CacheConfig controls the availability response cache. The cache sits
// in front of the public browse endpoints (settings, slots, tables),
// which are read-heavy and tolerate brief staleness while a booking
// page is open. KeyStrategy decides which request parts form the key;
// every strategy includes the tenant slug so restaurants never share
// entries.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables. The defaults
// cache tenant+route+query for 30 seconds, which keeps a busy booking
// page from recomputing the same day's slot grid on every poll.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "tenant_route_query"),
		Prefix:       envStr("CACHE_PREFIX", "avail"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
