// Package cache memoises computed prayer schedules in memory.
//
// A single invocation may ask for the same calendar day several times: the
// nearest-mode selector looks at yesterday and tomorrow, and the list views
// walk consecutive days. Nothing is written to disk.
package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

// DefaultSize holds a little over a month of schedules.
const DefaultSize = 40

// Provider wraps a prayer.Provider with an LRU cache keyed by calendar date.
// The wrapped provider must be bound to a single location and method.
type Provider struct {
	next    prayer.Provider
	entries *lru.Cache[string, *prayer.Schedule]
}

var _ prayer.Provider = (*Provider)(nil)

// New creates a caching Provider holding up to size schedules.
// A non-positive size uses DefaultSize.
func New(next prayer.Provider, size int) (*Provider, error) {
	if size <= 0 {
		size = DefaultSize
	}

	entries, err := lru.New[string, *prayer.Schedule](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule cache: %w", err)
	}

	return &Provider{next: next, entries: entries}, nil
}

// Schedule returns the cached schedule for date's calendar day, computing it on a miss.
// Errors are not cached.
func (p *Provider) Schedule(ctx context.Context, date time.Time) (*prayer.Schedule, error) {
	key := cacheKey(date)
	if sched, ok := p.entries.Get(key); ok {
		logger.Debugf(ctx, "schedule cache hit for %s", key)
		return sched, nil
	}

	sched, err := p.next.Schedule(ctx, date)
	if err != nil {
		return nil, err
	}

	p.entries.Add(key, sched)
	logger.Debugf(ctx, "schedule cache miss for %s, %d cached", key, p.Len())

	return sched, nil
}

// Len returns the number of cached schedules.
func (p *Provider) Len() int {
	return p.entries.Len()
}

func cacheKey(date time.Time) string {
	return date.Format(time.DateOnly)
}
