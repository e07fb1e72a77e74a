package ratelimiter

import (
	"context"
	"time"
)

// Store holds bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for key up to now, takes tokens and
	// returns what is left. A negative remainder means the request is denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config, now time.Time) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
