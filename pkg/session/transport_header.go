package session

import (
	"net/http"
	"strings"
	"time"
)

const (
	// ResponseTokenHeader carries a freshly issued token to header clients.
	ResponseTokenHeader = "X-Session-Token"
	// ResponseExpiresHeader carries the token expiry, RFC 3339.
	ResponseExpiresHeader = "X-Session-Expires"
)

// HeaderTransport reads "Authorization: <scheme> <token>" for non-browser
// clients and returns new tokens in X-Session-Token. A client without a token
// yet selects it by sending the bare scheme, "Authorization: Session".
type HeaderTransport struct {
	scheme string
	now    func() time.Time
}

// NewHeaderTransport accepts the given Authorization scheme, "Session" when empty.
func NewHeaderTransport(scheme string) *HeaderTransport {
	if scheme == "" {
		scheme = "Session"
	}
	return &HeaderTransport{scheme: scheme, now: time.Now}
}

func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, t.scheme) {
		return "", ErrNoTokenProvided
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrNoTokenProvided
	}
	return token, nil
}

// Selects reports whether r carries an Authorization header with t's scheme.
func (t *HeaderTransport) Selects(r *http.Request) bool {
	scheme, _, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	return strings.EqualFold(scheme, t.scheme)
}

func (t *HeaderTransport) SetToken(w http.ResponseWriter, _ *http.Request, token string, ttl time.Duration) error {
	w.Header().Set(ResponseTokenHeader, token)
	if ttl > 0 {
		w.Header().Set(ResponseExpiresHeader, t.now().Add(ttl).UTC().Format(time.RFC3339))
	}
	return nil
}

func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Del(ResponseTokenHeader)
	w.Header().Del(ResponseExpiresHeader)
	return nil
}
