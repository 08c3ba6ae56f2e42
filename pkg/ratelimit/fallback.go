package ratelimit

import (
	"context"
	"time"

	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/metrics"
	"go.uber.org/zap"
)

// FallbackStore uses primary and fails open to fallback when primary errors.
// A Redis outage therefore degrades the quota to per-instance instead of
// blocking the contact form.
type FallbackStore struct {
	primary  Store
	fallback Store
}

// NewFallbackStore combines two stores
func NewFallbackStore(primary, fallback Store) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback}
}

func (s *FallbackStore) Name() string {
	return s.primary.Name() + "+" + s.fallback.Name()
}

func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	d, err := s.primary.Allow(ctx, key, limit, window)
	if err == nil {
		return d, nil
	}

	metrics.RateLimitStoreErrors.WithLabelValues(s.primary.Name()).Inc()
	logger.Warn("Rate limit store failed, using fallback",
		zap.String("store", s.primary.Name()),
		zap.String("fallback", s.fallback.Name()),
		zap.Error(err))

	return s.fallback.Allow(ctx, key, limit, window)
}
