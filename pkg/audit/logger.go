package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextExtractor func(context.Context) (string, bool)

type auditLogger struct {
	storage            Storage
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	now                func() time.Time
}

// Option configures a Logger.
type Option func(*auditLogger)

// WithRequestIDExtractor fills Event.RequestID from the context.
func WithRequestIDExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *auditLogger) {
		l.requestIDExtractor = fn
	}
}

// WithIPExtractor fills Event.IP from the context when no IP option is given.
func WithIPExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *auditLogger) {
		l.ipExtractor = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *auditLogger) {
		l.now = now
	}
}

// NewLogger creates a Logger writing to storage.
func NewLogger(storage Storage, opts ...Option) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &auditLogger{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *auditLogger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.record(ctx, action, ResultSuccess, opts, nil)
}

func (l *auditLogger) LogFailure(ctx context.Context, action, reason string, opts ...EventOption) error {
	return l.record(ctx, action, ResultFailure, opts, func(e *Event) { e.Reason = reason })
}

func (l *auditLogger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	return l.record(ctx, action, ResultError, opts, func(e *Event) {
		if err != nil {
			e.Error = err.Error()
		}
	})
}

func (l *auditLogger) record(ctx context.Context, action string, result Result, opts []EventOption, extra func(*Event)) error {
	event := Event{
		ID:        uuid.NewString(),
		Action:    action,
		Result:    result,
		CreatedAt: l.now(),
	}

	if l.requestIDExtractor != nil {
		if id, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = id
		}
	}
	if l.ipExtractor != nil {
		if ip, ok := l.ipExtractor(ctx); ok {
			event.IP = ip
		}
	}

	if extra != nil {
		extra(&event)
	}
	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}
