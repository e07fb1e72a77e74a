package audit

import (
	"context"
	"time"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultError   Result = "error"
)

// Event is a single audit entry.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return ErrEventValidation
	}
	return nil
}

// EventOption adjusts an Event before it is stored.
type EventOption func(*Event)

// Logger records audit events.
type Logger interface {
	// Log records a successful action.
	Log(ctx context.Context, action string, opts ...EventOption) error
	// LogFailure records a refused action, e.g. a rejected session.
	LogFailure(ctx context.Context, action, reason string, opts ...EventOption) error
	// LogError records an action that failed with an error.
	LogError(ctx context.Context, action string, err error, opts ...EventOption) error
}

// Storage persists events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}
