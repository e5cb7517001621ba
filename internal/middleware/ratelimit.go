package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/repository"
	"github.com/salvaalejos/ceitm-web/pkg/config"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
)

// RateLimit bounds a public endpoint per client IP using a fixed Redis
// window. A Redis outage never blocks traffic.
func RateLimit(cache *repository.CacheRepository, cfg config.RateLimitConfig, scope string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !cfg.Enabled || cache == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		count, err := cache.IncrementWindow(c.Request.Context(), key, cfg.Window)
		if err != nil {
			logger.Warn("rate limit check failed", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if count > int64(cfg.Requests) {
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "too many requests, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
