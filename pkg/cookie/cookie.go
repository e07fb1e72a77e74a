package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	minSecretLength = 32
	signatureSep    = "."
)

// Manager sets and reads cookies using a shared set of default attributes.
type Manager struct {
	secrets  []string
	defaults Options
}

// New creates a Manager. At least one non-empty secret of 32+ characters
// is required. The first secret signs new cookies; every secret is accepted
// when verifying.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, errors.Join(ErrSecretTooShort,
				fmt.Errorf("secret %d has %d chars, need at least %d", i, len(s), minSecretLength))
		}
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		secrets:  secrets,
		defaults: defaults.with(opts),
	}, nil
}

// Defaults returns the attributes applied to every cookie.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	o := m.defaults.with(opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
	return nil
}

// Get returns the raw value of the named cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the named cookie using the manager defaults.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value together with its HMAC signature.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	payload := base64.RawURLEncoding.EncodeToString([]byte(value))
	return m.Set(w, name, payload+signatureSep+m.sign(m.secrets[0], payload), opts...)
}

// GetSigned reads a cookie written by SetSigned and verifies its signature.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	payload, sig, ok := strings.Cut(raw, signatureSep)
	if !ok || payload == "" || sig == "" {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		if hmac.Equal([]byte(sig), []byte(m.sign(secret, payload))) {
			value, err := base64.RawURLEncoding.DecodeString(payload)
			if err != nil {
				return "", ErrInvalidFormat
			}
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}

func (m *Manager) sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
