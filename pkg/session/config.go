package session

import "time"

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// TTL is the fixed lifetime of a session from creation. Also bounds how
	// long a revoked token is remembered and how long a cache entry may idle.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// CleanupInterval between expiry sweeps. Zero disables the background sweep.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// HeaderScheme is the Authorization scheme accepted from non-browser clients.
	HeaderScheme string `env:"SESSION_HEADER_SCHEME" envDefault:"Session"`

	// CSRFHeader is the request header RequireCSRF reads the token from.
	CSRFHeader string `env:"SESSION_CSRF_HEADER" envDefault:"X-CSRF-Token"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		TTL:             24 * time.Hour,
		CleanupInterval: time.Hour,
		HeaderScheme:    "Session",
		CSRFHeader:      "X-CSRF-Token",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.CleanupInterval < 0 {
		c.CleanupInterval = 0
	}
	if c.HeaderScheme == "" {
		c.HeaderScheme = d.HeaderScheme
	}
	if c.CSRFHeader == "" {
		c.CSRFHeader = d.CSRFHeader
	}
	return c
}
