package session

import (
	"errors"
	"net/http"
	"time"
)

// CompositeTransport reads from the first transport that has a token and
// issues new tokens through a single transport: the first one that selects
// the request, otherwise the first one configured. Clearing goes through all
// of them.
type CompositeTransport struct {
	transports []Transport
}

// NewCompositeTransport tries transports in the given order.
func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

// NewDefaultTransport prefers the cookie and falls back to the Authorization header.
func NewDefaultTransport(cookies *CookieTransport, cfg Config) *CompositeTransport {
	return NewCompositeTransport(cookies, NewHeaderTransport(cfg.withDefaults().HeaderScheme))
}

func (t *CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, tr := range t.transports {
		if token, err := tr.GetToken(r); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrNoTokenProvided
}

func (t *CompositeTransport) SetToken(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error {
	tr := t.issuer(r)
	if tr == nil {
		return ErrNoTransport
	}
	return tr.SetToken(w, r, token, ttl)
}

func (t *CompositeTransport) issuer(r *http.Request) Transport {
	for _, tr := range t.transports {
		if s, ok := tr.(Selector); ok && s.Selects(r) {
			return tr
		}
	}
	if len(t.transports) == 0 {
		return nil
	}
	return t.transports[0]
}

func (t *CompositeTransport) ClearToken(w http.ResponseWriter) error {
	var errs []error
	for _, tr := range t.transports {
		if err := tr.ClearToken(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
