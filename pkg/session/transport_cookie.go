package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/cookie"
)

// CookieTransport carries the token in a signed, HttpOnly, SameSite=Lax cookie.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
	secure  bool
}

// NewCookieTransport uses cfg.CookieName and cfg.SecureCookies.
func NewCookieTransport(cookies *cookie.Manager, cfg Config) *CookieTransport {
	cfg = cfg.withDefaults()
	return &CookieTransport{
		cookies: cookies,
		name:    cfg.CookieName,
		secure:  cfg.SecureCookies,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookies.GetSigned(r, t.name)
	if err != nil || token == "" {
		return "", ErrNoTokenProvided
	}
	return token, nil
}

// Selects reports whether r already carries the session cookie.
func (t *CookieTransport) Selects(r *http.Request) bool {
	_, err := r.Cookie(t.name)
	return err == nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, _ *http.Request, token string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	return t.cookies.SetSigned(w, t.name, token, opts...)
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookies.Delete(w, t.name)
	return nil
}
