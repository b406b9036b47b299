package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig holds configuration for one rate limit bucket
type RateLimitConfig struct {
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
	Enabled  bool          `json:"enabled"`
}

// rateLimitEntry tracks request times for a specific key
type rateLimitEntry struct {
	requests []time.Time
	mutex    sync.Mutex
}

// RateLimiter implements in-memory sliding-window rate limiting, keyed by
// client IP per bucket.
type RateLimiter struct {
	entries sync.Map // map[string]*rateLimitEntry
	configs map[string]RateLimitConfig
	mutex   sync.RWMutex
}

// RateLimitSettings holds the configurable buckets: login attempts, public
// reads, and authenticated writes (project mutations and uploads).
type RateLimitSettings struct {
	Login      RateLimitConfig `json:"login"`
	PublicAPI  RateLimitConfig `json:"public_api"`
	AdminWrite RateLimitConfig `json:"admin_write"`
}

// DefaultRateLimitSettings provides sensible defaults
func DefaultRateLimitSettings() RateLimitSettings {
	return RateLimitSettings{
		Login: RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
			Enabled:  true,
		},
		PublicAPI: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
			Enabled:  true,
		},
		AdminWrite: RateLimitConfig{
			Requests: 30,
			Window:   time.Minute,
			Enabled:  true,
		},
	}
}

// NewRateLimiter creates a new rate limiter with default settings
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{}
	rl.UpdateSettings(DefaultRateLimitSettings())
	return rl
}

// UpdateSettings replaces the bucket configurations
func (rl *RateLimiter) UpdateSettings(settings RateLimitSettings) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.configs = map[string]RateLimitConfig{
		"login":       settings.Login,
		"public_api":  settings.PublicAPI,
		"admin_write": settings.AdminWrite,
	}
}

// GetSettings returns the current bucket configurations
func (rl *RateLimiter) GetSettings() RateLimitSettings {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	return RateLimitSettings{
		Login:      rl.configs["login"],
		PublicAPI:  rl.configs["public_api"],
		AdminWrite: rl.configs["admin_write"],
	}
}

// Limit creates middleware enforcing the named bucket, keyed by client IP.
func (rl *RateLimiter) Limit(bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.mutex.RLock()
		config, exists := rl.configs[bucket]
		rl.mutex.RUnlock()

		if !exists || !config.Enabled {
			c.Next()
			return
		}

		key := bucket + ":" + c.ClientIP()
		allowed, resetTime := rl.allow(key, config)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(time.Until(resetTime).Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"limit":  config.Requests,
				"window": config.Window.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow records the request and reports whether it fits in the window.
func (rl *RateLimiter) allow(key string, config RateLimitConfig) (bool, time.Time) {
	now := time.Now()

	entryInterface, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{})
	entry := entryInterface.(*rateLimitEntry)

	entry.mutex.Lock()
	defer entry.mutex.Unlock()

	// Drop requests outside the window
	cutoff := now.Add(-config.Window)
	valid := entry.requests[:0]
	for _, reqTime := range entry.requests {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}
	entry.requests = valid

	if len(entry.requests) >= config.Requests {
		oldest := entry.requests[0]
		return false, oldest.Add(config.Window)
	}

	entry.requests = append(entry.requests, now)
	return true, time.Time{}
}
