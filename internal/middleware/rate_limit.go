package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itmade/itmade-api/pkg/metrics"
	"golang.org/x/time/rate"
)

// RateLimiter implements a simple in-memory token bucket per IP address.
// It guards the whole API against floods; the contact quota is separate.
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.RWMutex
	r        rate.Limit // requests per second
	b        int        // burst size

	cleanupEvery time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
}

// NewRateLimiter creates a new rate limiter
// r: requests per second (e.g., 10 means 10 requests per second)
// b: burst size (e.g., 20 means allow bursts of up to 20 requests)
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return newRateLimiter(r, b, time.Minute)
}

func newRateLimiter(r rate.Limit, b int, cleanupEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:     make(map[string]*rate.Limiter),
		r:            r,
		b:            b,
		cleanupEvery: cleanupEvery,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	go rl.cleanupVisitors()

	return rl
}

// Stop ends the cleanup goroutine and waits for it to exit
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
	<-rl.done
}

// getVisitor returns the rate limiter for a given IP address
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[ip] = limiter
	}

	return limiter
}

// cleanupVisitors removes inactive visitors from memory
func (rl *RateLimiter) cleanupVisitors() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, limiter := range rl.visitors {
				// a full bucket means no request since it last refilled
				if limiter.Tokens() >= float64(rl.b) {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// visitorCount returns the number of tracked addresses
func (rl *RateLimiter) visitorCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.visitors)
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getVisitor(ip)

		if !limiter.Allow() {
			metrics.RateLimitRejections.WithLabelValues("api").Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
