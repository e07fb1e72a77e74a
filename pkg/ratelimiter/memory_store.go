package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	staleAfter time.Duration
	stop       chan struct{}
	closeOnce  sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithStaleAfter drops buckets untouched for d. Zero keeps them forever.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.staleAfter = d
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:    make(map[string]*bucket),
		staleAfter: time.Hour,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.staleAfter > 0 {
		go ms.cleanup()
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config, now time.Time) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Intervals are capped so a long idle period cannot overflow.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	if intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals)); intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	// A denied request does not dig the bucket deeper.
	if b.tokens >= tokens {
		b.tokens -= tokens
	} else {
		b.lastAccess = now
		return b.tokens - tokens, b.lastRefill.Add(cfg.RefillInterval), nil
	}
	b.lastAccess = now

	return b.tokens, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.buckets, key)
	return nil
}

// Len returns the number of tracked keys.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.buckets)
}

func (ms *MemoryStore) cleanup() {
	ticker := time.NewTicker(ms.staleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeStale(time.Now())
		case <-ms.stop:
			return
		}
	}
}

func (ms *MemoryStore) removeStale(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > ms.staleAfter {
			delete(ms.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (ms *MemoryStore) Close() error {
	ms.closeOnce.Do(func() { close(ms.stop) })
	return nil
}
