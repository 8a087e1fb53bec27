package oddsapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bsumme/hedgefinder/internal/domain"
)

// CachedSource decorates an EventSource with an EventCache so repeated scans
// of the same (sport, market, book-set) combination inside the cache TTL do
// not burn API quota. Cache failures degrade to a direct fetch.
type CachedSource struct {
	source domain.EventSource
	cache  domain.EventCache
	sample bool
	logger *slog.Logger
}

// NewCachedSource wraps source with cache. sample must match the source's
// data mode; it is part of the cache key.
func NewCachedSource(source domain.EventSource, cache domain.EventCache, sample bool, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		sample: sample,
		logger: logger.With(slog.String("component", "event_cache")),
	}
}

// Events implements domain.EventSource.
func (cs *CachedSource) Events(ctx context.Context, sportKey, marketKey string, bookKeys []string) ([]domain.Event, error) {
	key := domain.EventKey(sportKey, marketKey, bookKeys, cs.sample)

	events, err := cs.cache.Get(ctx, key)
	if err == nil {
		return events, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		cs.logger.Warn("cache read failed, fetching directly",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	events, err = cs.source.Events(ctx, sportKey, marketKey, bookKeys)
	if err != nil {
		return nil, err
	}

	if err := cs.cache.Set(ctx, key, events); err != nil {
		cs.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return events, nil
}

// Compile-time interface check.
var _ domain.EventSource = (*CachedSource)(nil)
