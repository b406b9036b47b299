package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-project/portfolio-server/internal/api/middleware"
)

// RateLimitHandler exposes super_admin management of the rate limiter
type RateLimitHandler struct {
	rateLimiter *middleware.RateLimiter
}

func NewRateLimitHandler(rateLimiter *middleware.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{rateLimiter: rateLimiter}
}

// GetSettings returns current rate limit configuration
func (h *RateLimitHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.rateLimiter.GetSettings()})
}

// UpdateSettings replaces the rate limit configuration
func (h *RateLimitHandler) UpdateSettings(c *gin.Context) {
	var settings middleware.RateLimitSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	if err := validateRateLimitSettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.rateLimiter.UpdateSettings(settings)

	c.JSON(http.StatusOK, gin.H{
		"message":  "rate limit settings updated",
		"settings": settings,
	})
}

// ResetSettings restores the default configuration
func (h *RateLimitHandler) ResetSettings(c *gin.Context) {
	defaults := middleware.DefaultRateLimitSettings()
	h.rateLimiter.UpdateSettings(defaults)

	c.JSON(http.StatusOK, gin.H{
		"message":  "rate limit settings reset to defaults",
		"settings": defaults,
	})
}

func validateRateLimitSettings(settings middleware.RateLimitSettings) error {
	buckets := map[string]middleware.RateLimitConfig{
		"login":       settings.Login,
		"public_api":  settings.PublicAPI,
		"admin_write": settings.AdminWrite,
	}
	for name, config := range buckets {
		if config.Enabled && (config.Requests < 1 || config.Window <= 0) {
			return fmt.Errorf("bucket %s requires a positive request count and window", name)
		}
	}
	return nil
}
