package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// Server wraps http.Server with context-driven graceful shutdown.
type Server struct {
	cfg   Config
	log   *slog.Logger
	hooks []func(context.Context) error
}

// New returns a Server for cfg.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on cfg.Addr and serves handler until ctx is done, then shuts
// down within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.hooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.InfoContext(shutdownCtx, "http server stopped")

	if len(errs) > 0 {
		return errors.Join(ErrShutdown, errors.Join(errs...))
	}
	return nil
}
