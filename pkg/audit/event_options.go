package audit

import "github.com/dmitrymomot/sessionguard/pkg/logger"

func WithUserID(id string) EventOption {
	return func(e *Event) {
		e.UserID = id
	}
}

// WithSessionID stores the redacted form of a session token.
func WithSessionID(token string) EventOption {
	return func(e *Event) {
		e.SessionID = logger.RedactToken(token)
	}
}

func WithIP(ip string) EventOption {
	return func(e *Event) {
		e.IP = ip
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

func WithResult(result Result) EventOption {
	return func(e *Event) {
		e.Result = result
	}
}
