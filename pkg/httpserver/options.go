package httpserver

import (
	"context"
	"log/slog"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithShutdownHook registers fn to run after the listener has stopped.
// Hooks run in registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, fn)
	}
}
