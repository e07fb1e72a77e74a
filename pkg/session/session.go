package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
)

// tokenBytes is the amount of randomness in session and CSRF tokens.
const tokenBytes = 32

// Session is an authenticated login bound to one client device.
type Session struct {
	Token          string    `json:"token"`
	UserID         uuid.UUID `json:"user_id"`
	Fingerprint    string    `json:"fingerprint"`
	IP             string    `json:"ip"`
	IPSubnet       string    `json:"ip_subnet"`
	UserAgent      string    `json:"user_agent"`
	CSRFToken      string    `json:"csrf_token"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// Clone returns a copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// RequestContext is the client information a session is bound to.
type RequestContext struct {
	IP        string
	UserAgent string
}

// RequestContextFromRequest reads the client IP (preferring the one resolved
// by clientip middleware, otherwise the TCP peer) and user-agent from r.
func RequestContextFromRequest(r *http.Request) RequestContext {
	ip := clientip.GetIPFromContext(r.Context())
	if ip == "" {
		ip = clientip.RemoteIP(r)
	}
	return RequestContext{IP: ip, UserAgent: r.UserAgent()}
}

// Status is the outcome of validating a token.
type Status string

const (
	StatusValid               Status = "valid"
	StatusRevoked             Status = "revoked"
	StatusNotFoundOrExpired   Status = "not_found_or_expired"
	StatusFingerprintMismatch Status = "fingerprint_mismatch"
)

// StatusOf maps a Validate result to its Status. Errors that are not one of
// the validation outcomes, such as ErrStoreUnavailable, return "".
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusValid
	case errors.Is(err, ErrRevoked):
		return StatusRevoked
	case errors.Is(err, ErrFingerprintMismatch):
		return StatusFingerprintMismatch
	case errors.Is(err, ErrNotFoundOrExpired):
		return StatusNotFoundOrExpired
	default:
		return ""
	}
}

// generateToken returns 32 random bytes, base64url encoded without padding.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
