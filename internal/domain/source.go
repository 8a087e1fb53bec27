package domain

import (
	"context"
	"fmt"
	"strings"
)

// EventSource supplies the event list for one sport/market/bookmaker-set
// combination. Implementations are expected to be already authenticated and
// rate limited; fetch failures are surfaced to the caller as retryable
// errors, the scan core never retries.
type EventSource interface {
	Events(ctx context.Context, sportKey, marketKey string, bookKeys []string) ([]Event, error)
}

// EventCache stores fetched event payloads under an explicit key with a TTL
// owned by the implementation. Get returns ErrNotFound on a miss.
type EventCache interface {
	Get(ctx context.Context, key string) ([]Event, error)
	Set(ctx context.Context, key string, events []Event) error
}

// EventKey builds the cache key for one fetch combination. Book keys are
// joined in the order given; callers pass a stable ordering. The sample flag
// keeps generated data from ever shadowing live payloads.
func EventKey(sportKey, marketKey string, bookKeys []string, sample bool) string {
	return fmt.Sprintf("events:%s:%s:%s:%t", sportKey, marketKey, strings.Join(bookKeys, ","), sample)
}
