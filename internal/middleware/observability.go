package middleware

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/metrics"
	"go.uber.org/zap"
)

// Route labels for requests gin could not match to a registered route
const (
	routeSite       = "site"
	routeUnknownAPI = "/api/*"
)

// quietRoutes are polled by orchestrators and scrapers; successful hits are counted but not logged
var quietRoutes = map[string]bool{
	"/api/healthcheck":    true,
	"/api/metrics":        true,
	"/api/contact/health": true,
}

var redactedQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"auth": true, "api_key": true, "apikey": true, "recaptchatoken": true,
}

// routeLabel returns a bounded metric label: the matched route template,
// or one shared label for static pages and one for unknown API paths
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		return routeUnknownAPI
	}
	return routeSite
}

// redactQuery keeps the first value of each parameter, masking credentials
func redactQuery(query url.Values) map[string]string {
	out := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) == 0 {
			continue
		}
		if redactedQueryParams[strings.ToLower(k)] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v[0]
	}
	return out
}

// ObservabilityMiddleware records per-route request metrics and writes one log
// line per request. Message bodies are never logged.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		route := routeLabel(c)
		status := c.Writer.Status()
		code := strconv.Itoa(status)
		duration := metrics.MeasureDuration(start)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, code).Inc()

		if status < 400 && quietRoutes[route] {
			return
		}

		header := c.Writer.Header()
		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if id := header.Get(RequestIDHeader); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if remaining := header.Get("X-RateLimit-Remaining"); remaining != "" {
			fields = append(fields, zap.String("quota_remaining", remaining))
		}

		if status >= 400 {
			if query := c.Request.URL.Query(); len(query) > 0 {
				fields = append(fields, zap.Any("query_params", redactQuery(query)))
			}
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("error", c.Errors.String()))
			}
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, fields...)
	}
}
