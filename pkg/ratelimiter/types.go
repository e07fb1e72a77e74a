package ratelimiter

import "time"

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	now       time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a rejected caller should wait; zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

// Config defines a token bucket.
type Config struct {
	Capacity       int           `env:"LOGIN_RATE_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"LOGIN_RATE_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"LOGIN_RATE_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0, c.RefillRate <= 0, c.RefillInterval <= 0:
		return ErrInvalidConfig
	}
	return nil
}
