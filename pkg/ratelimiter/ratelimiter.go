package ratelimiter

import (
	"context"
	"time"
)

// Bucket is a token bucket limiter over a Store.
type Bucket struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// BucketOption configures a Bucket.
type BucketOption func(*Bucket)

// WithClock overrides the time source.
func WithClock(now func() time.Time) BucketOption {
	return func(b *Bucket) {
		b.now = now
	}
}

func NewBucket(store Store, cfg Config, opts ...BucketOption) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b := &Bucket{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, ErrInvalidTokenCount
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	now := b.now()
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg, now)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt, now: now}, nil
}

// Reset forgets the bucket for key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
