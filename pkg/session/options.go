package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces the configuration. Zero fields take defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithCache sets the cache tier. Defaults to MemoryCache.
func WithCache(c CacheBackend) Option {
	return func(m *Manager) {
		m.cache = c
	}
}

// WithDurable sets the durable tier. Defaults to MemoryDurable.
func WithDurable(d DurableBackend) Option {
	return func(m *Manager) {
		m.durable = d
	}
}

// WithTransport sets how tokens travel. Overrides WithCookieManager.
func WithTransport(t Transport) Option {
	return func(m *Manager) {
		m.transport = t
	}
}

// WithCookieManager enables the default cookie-then-header transport.
func WithCookieManager(c *cookie.Manager) Option {
	return func(m *Manager) {
		m.cookies = c
	}
}

// WithIdentityProvider sets where RequireAuth loads the session owner from.
func WithIdentityProvider(p identity.Provider) Option {
	return func(m *Manager) {
		m.identities = p
	}
}

// WithAuthenticator enables Login.
func WithAuthenticator(a *identity.Authenticator) Option {
	return func(m *Manager) {
		m.authenticator = a
	}
}

// WithAuditLogger sets the audit sink. Defaults to audit records in the manager's log.
func WithAuditLogger(a audit.Logger) Option {
	return func(m *Manager) {
		m.audit = a
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}
