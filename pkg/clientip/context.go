package clientip

import (
	"context"
)

// clientIPContextKey is the key for storing client IP in context
type clientIPContextKey struct{}

// SetIPToContext stores client IP in context
func SetIPToContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// Lookup returns the client IP stored in ctx and whether one was set.
func Lookup(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok && ip != ""
}

// GetIPFromContext retrieves client IP from context
func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
