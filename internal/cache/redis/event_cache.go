package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bsumme/hedgefinder/internal/domain"
)

// DefaultEventTTL bounds how stale a cached odds payload may be. Odds move
// fast; anything older than this is refetched.
const DefaultEventTTL = 60 * time.Second

// EventCache implements domain.EventCache with JSON-serialized event lists
// under an explicit key and TTL. Keys come from domain.EventKey so every
// (sport, market, book-set, sample-flag) combination caches independently.
type EventCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewEventCache creates an EventCache backed by the given Client. A zero or
// negative ttl falls back to DefaultEventTTL.
func NewEventCache(c *Client, ttl time.Duration) *EventCache {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &EventCache{rdb: c.Underlying(), ttl: ttl}
}

// Get returns the cached event list for key, or domain.ErrNotFound.
func (ec *EventCache) Get(ctx context.Context, key string) ([]domain.Event, error) {
	data, err := ec.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get events %s: %w", key, err)
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("redis: unmarshal events %s: %w", key, err)
	}
	return events, nil
}

// Set stores the event list under key with the configured TTL.
func (ec *EventCache) Set(ctx context.Context, key string, events []domain.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("redis: marshal events %s: %w", key, err)
	}
	if err := ec.rdb.Set(ctx, key, data, ec.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set events %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.EventCache = (*EventCache)(nil)
