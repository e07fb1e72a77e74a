package requestid

import "context"

type contextKey struct{}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request id, or "" when none was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Lookup is FromContext in the (value, found) shape used by context extractors.
func Lookup(ctx context.Context) (string, bool) {
	id := FromContext(ctx)
	return id, id != ""
}
