// Package cache adds a read-through Redis cache in front of the funnel stats
// query, which touches every row and backs the most-hit dashboard widget.
package cache

import (
	"context"
	"errors"
	"time"

	platformcache "autoplaza_backend/platform/cache"
	"autoplaza_backend/platform/logger"

	"autoplaza_backend/internal/prospects/repository"
)

const statsKey = "prospects:stats"

// StatsCache wraps a StatsReader with a Redis cache. A nil *StatsCache, or
// one built with a nil client, passes every call straight through, so callers
// never branch on whether caching is configured.
type StatsCache struct {
	reader repository.StatsReader
	cache  *platformcache.Cache
	ttl    time.Duration
	logger *logger.Logger
}

func NewStatsCache(reader repository.StatsReader, cache *platformcache.Cache, ttl time.Duration, logger *logger.Logger) *StatsCache {
	return &StatsCache{reader: reader, cache: cache, ttl: ttl, logger: logger}
}

// GetStats serves from Redis when it can. Cache failures degrade to the
// database, never to an error.
func (s *StatsCache) GetStats(ctx context.Context, now time.Time) (repository.Stats, error) {
	if s == nil || s.cache == nil {
		return s.readThrough(ctx, now)
	}

	var cached repository.Stats
	err := s.cache.GetJSON(ctx, statsKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, platformcache.ErrMiss) {
		s.logger.Warn("stats cache read failed, falling back to database", "error", err)
	}

	stats, err := s.reader.GetStats(ctx, now)
	if err != nil {
		return repository.Stats{}, err
	}

	if err := s.cache.SetJSON(ctx, statsKey, stats, s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", "error", err)
	}
	return stats, nil
}

func (s *StatsCache) readThrough(ctx context.Context, now time.Time) (repository.Stats, error) {
	if s == nil || s.reader == nil {
		return repository.Stats{}, errors.New("stats reader not configured")
	}
	return s.reader.GetStats(ctx, now)
}

// Invalidate drops the cached stats after a mutation. Best effort.
func (s *StatsCache) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", "error", err)
	}
}
