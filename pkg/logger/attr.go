package logger

import (
	"log/slog"
	"strconv"
)

// sessionIDPrefix is how many token characters survive redaction.
const sessionIDPrefix = 8

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

func Role(role any) slog.Attr {
	if role == nil {
		return slog.Attr{}
	}
	return slog.Any("role", role)
}

func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// SessionID logs a redacted session token: the first few characters
// followed by an ellipsis. Tokens too short to redact are fully masked.
func SessionID(token string) slog.Attr {
	return slog.String("session_id", RedactToken(token))
}

// RedactToken returns the loggable form of a secret token.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= sessionIDPrefix*2 {
		return "***"
	}
	return token[:sessionIDPrefix] + "…"
}

func IP(ip string) slog.Attr {
	return slog.String("ip", ip)
}

// Outcome records how an authentication decision resolved,
// e.g. "valid" or "revoked".
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
