// Package ratelimiter throttles requests with a token bucket per key.
//
// It guards credential checks: the server mounts Middleware on the login
// route keyed by client IP so password guessing is bounded regardless of
// which account is targeted.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	r.With(ratelimiter.Middleware(bucket, ratelimiter.ByIP)).Post("/login", login)
//
// MemoryStore keeps buckets in process memory, so limits apply per instance.
package ratelimiter
