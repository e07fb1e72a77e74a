package session

import (
	"net/http"
	"time"
)

// Transport moves session tokens between client and server.
type Transport interface {
	// GetToken extracts the token, returning ErrNoTokenProvided when absent.
	GetToken(r *http.Request) (string, error)
	// SetToken hands the token to the client of r for ttl.
	SetToken(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error
	// ClearToken tells the client to forget the token.
	ClearToken(w http.ResponseWriter) error
}

// Selector is implemented by transports that can tell whether the client of
// r expects its token through them.
type Selector interface {
	Selects(r *http.Request) bool
}
