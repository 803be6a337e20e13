// Package cache provides the response cache shared by every provider call.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/metrics"
)

// Entry is a payload read from a secondary tier. TTL is the time it has left;
// zero or less means the tier keeps it without expiry.
type Entry struct {
	Value []byte
	TTL   time.Duration
}

// Store is a secondary cache tier behind the in-process cache.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Sweep(ctx context.Context) (int64, error)
	Name() string
	Close() error
}

// Service caches raw provider payloads keyed by endpoint signature. Reads go
// to memory first, then the optional secondary store, which backfills memory.
type Service struct {
	memory    *gocache.Cache
	secondary Store
	maxItems  int
	logger    *logrus.Entry
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewService creates a cache service. secondary may be nil.
func NewService(defaultTTL time.Duration, maxItems int, secondary Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		memory:    gocache.New(defaultTTL, defaultTTL*2),
		secondary: secondary,
		maxItems:  maxItems,
		logger:    logger.WithField("component", "cache"),
	}
}

// Get returns a cached payload. Secondary tier errors are logged and treated as misses.
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, found := s.memory.Get(key); found {
		if data, ok := v.([]byte); ok {
			s.record("memory", true)
			return data, true
		}
	}

	if s.secondary != nil {
		data, expiresIn, ok := s.getSecondary(ctx, key)
		if ok {
			s.record(s.secondary.Name(), true)
			s.memory.Set(key, data, expiresIn)
			return data, true
		}
	}

	s.record("all", false)
	return nil, false
}

// getSecondary returns the payload and how long memory may keep it, which
// never exceeds what the secondary tier has left.
func (s *Service) getSecondary(ctx context.Context, key string) ([]byte, time.Duration, bool) {
	entry, found, err := s.secondary.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Secondary cache read failed")
		return nil, 0, false
	}
	if !found {
		return nil, 0, false
	}
	if entry.TTL <= 0 {
		return entry.Value, gocache.DefaultExpiration, true
	}
	return entry.Value, entry.TTL, true
}

// Set stores a payload in every tier.
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s.maxItems > 0 && s.memory.ItemCount() >= s.maxItems {
		s.memory.DeleteExpired()
	}
	s.memory.Set(key, value, ttl)

	if s.secondary != nil {
		if err := s.secondary.Set(ctx, key, value, ttl); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Secondary cache write failed")
		}
	}
}

// Clear flushes every tier and resets statistics.
func (s *Service) Clear(ctx context.Context) error {
	s.memory.Flush()
	s.mu.Lock()
	s.hitCount, s.missCount = 0, 0
	s.mu.Unlock()
	metrics.UpdateCacheHitRatio(0)

	if s.secondary != nil {
		return s.secondary.Clear(ctx)
	}
	return nil
}

// Sweep drops expired entries from every tier and returns how many the
// secondary store removed.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	s.memory.DeleteExpired()
	if s.secondary == nil {
		return 0, nil
	}
	return s.secondary.Sweep(ctx)
}

// Stats returns cache statistics.
func (s *Service) Stats() (hits, misses uint64, ratio float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits = s.hitCount
	misses = s.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of in-memory entries.
func (s *Service) ItemCount() int {
	return s.memory.ItemCount()
}

// Close releases the secondary store.
func (s *Service) Close() error {
	if s.secondary != nil {
		return s.secondary.Close()
	}
	return nil
}

func (s *Service) record(tier string, hit bool) {
	s.mu.Lock()
	if hit {
		s.hitCount++
	} else {
		s.missCount++
	}
	s.mu.Unlock()

	metrics.RecordCacheLookup(tier, hit)
	_, _, ratio := s.Stats()
	metrics.UpdateCacheHitRatio(ratio)
}
