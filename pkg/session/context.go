package session

import "context"

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the session stored by RequireAuth.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// MustFromContext is FromContext for handlers mounted behind RequireAuth.
func MustFromContext(ctx context.Context) *Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return s
}
