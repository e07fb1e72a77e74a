package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter.invalid_config")
	ErrInvalidTokenCount = errors.New("ratelimiter.invalid_token_count")
	ErrEmptyKey          = errors.New("ratelimiter.empty_key")
)
