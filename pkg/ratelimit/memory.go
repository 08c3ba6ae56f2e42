package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps request logs in process memory.
// Logs expire with the window so idle clients are evicted by go-cache's janitor.
type MemoryStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store; cleanupInterval drives expired-key eviction
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
		now:   time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	var log []time.Time
	if v, ok := s.cache.Get(key); ok {
		log = v.([]time.Time)
	}

	// timestamps are appended in order, so the live ones form a suffix
	live := log[:0]
	for _, ts := range log {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	var oldest time.Time
	if len(live) > 0 {
		oldest = live[0]
	}

	d := decide(now, len(live), oldest, limit, window)
	if d.Allowed {
		live = append(live, now)
	}

	if len(live) == 0 {
		s.cache.Delete(key)
	} else {
		s.cache.Set(key, live, live[0].Add(window).Sub(now))
	}

	return d, nil
}
