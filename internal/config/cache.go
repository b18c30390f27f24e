package config

import (
	"time"
)

// CacheConfig defines settings for the Redis-backed read-query cache used by
// the concert and activity-log services. When Enabled is false or no Redis
// client is configured, caching is disabled and every query goes to the
// database. TTL defines the lifetime of cache entries and Prefix namespaces
// the keys so multiple deployments can share one Redis instance.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "cache"),
	}
}
