package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/metrics"
	"github.com/itmade/itmade-api/pkg/ratelimit"
	"go.uber.org/zap"
)

// ContactQuotaConfig holds the per-client submission quota
type ContactQuotaConfig struct {
	Max    int
	Window time.Duration
	// KeyFunc extracts the client key (default: c.ClientIP())
	KeyFunc func(*gin.Context) string
}

// QuotaMessage is the 429 body text for a window
func QuotaMessage(window time.Duration) string {
	minutes := int(window.Round(time.Minute) / time.Minute)
	if minutes <= 1 {
		return "Too many attempts. Please try again in a minute."
	}
	return fmt.Sprintf("Too many attempts. Please try again in %d minutes.", minutes)
}

// ContactQuota admits at most cfg.Max requests per client within any trailing
// cfg.Window. It runs before the handler, so every admitted request counts
// whatever its later outcome. Store failures let the request through.
func ContactQuota(store ratelimit.Store, cfg ContactQuotaConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	message := QuotaMessage(cfg.Window)

	return func(c *gin.Context) {
		key := keyFunc(c)

		d, err := store.Allow(c.Request.Context(), key, cfg.Max, cfg.Window)
		if err != nil {
			metrics.RateLimitStoreErrors.WithLabelValues(store.Name()).Inc()
			logger.Warn("Contact quota check failed, admitting request",
				zap.String("store", store.Name()),
				zap.String("client_ip", key),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(d.RetryAfter.Round(time.Second) / time.Second)
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			metrics.RateLimitRejections.WithLabelValues("contact").Inc()
			logger.Warn("Contact quota exceeded",
				zap.String("client_ip", key),
				zap.Int("retry_after_seconds", retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   message,
			})
			return
		}

		c.Next()
	}
}
