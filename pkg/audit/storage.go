package audit

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// SlogStorage writes events as structured log records.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage returns a Storage backed by log.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	return &SlogStorage{log: log.With(logger.Component("audit"))}
}

func (s *SlogStorage) Store(ctx context.Context, e Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", e.ID),
		logger.Event(e.Action),
		slog.String("result", string(e.Result)),
	}
	if e.UserID != "" {
		attrs = append(attrs, logger.UserID(e.UserID))
	}
	if e.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", e.SessionID))
	}
	if e.RequestID != "" {
		attrs = append(attrs, logger.RequestID(e.RequestID))
	}
	if e.IP != "" {
		attrs = append(attrs, logger.IP(e.IP))
	}
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	if len(e.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", e.Metadata))
	}

	level := slog.LevelInfo
	if e.Result != ResultSuccess {
		level = slog.LevelWarn
	}
	s.log.LogAttrs(ctx, level, "audit", attrs...)
	return nil
}

// MemoryStorage keeps events in memory.
type MemoryStorage struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of everything stored so far.
func (s *MemoryStorage) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Actions returns the action names in the order they were stored.
func (s *MemoryStorage) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}
