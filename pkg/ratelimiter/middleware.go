package ratelimiter

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// KeyFunc picks the bucket for a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ByIP keys requests by client IP, preferring the address resolved by the
// clientip middleware and otherwise the TCP peer.
func ByIP(r *http.Request) string {
	if ip := clientip.GetIPFromContext(r.Context()); ip != "" {
		return "ip:" + ip
	}
	if ip := clientip.RemoteIP(r); ip != "" {
		return "ip:" + ip
	}
	return ""
}

// Middleware rejects requests over the limit with 429 and Retry-After.
// Store failures let the request through and are logged.
func Middleware(b *Bucket, key KeyFunc, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), k)
			if err != nil {
				if !errors.Is(err, ErrEmptyKey) {
					log.WarnContext(r.Context(), "rate limit check failed", logger.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))

			if !res.Allowed() {
				retry := int(math.Ceil(res.RetryAfter().Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				log.InfoContext(r.Context(), "rate limited", slog.String("key", k))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
