package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/fingerprint"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

// Audit actions recorded by the manager.
const (
	ActionCreate    = "session.create"
	ActionValidate  = "session.validate"
	ActionRevoke    = "session.revoke"
	ActionRevokeAll = "session.revoke_all"
	ActionRotate    = "session.rotate"
	ActionLogin     = "session.login"
)

// CleanupStats reports what a sweep removed.
type CleanupStats struct {
	DurableDeleted    int
	CacheEvicted      int
	RevocationsPruned int
}

// Manager owns session lifecycle. Create it with New and release it with Close.
type Manager struct {
	config        Config
	cache         CacheBackend
	durable       DurableBackend
	store         *Store
	transport     Transport
	cookies       *cookie.Manager
	identities    identity.Provider
	authenticator *identity.Authenticator
	audit         audit.Logger
	log           *slog.Logger
	now           func() time.Time
	revoked       *revocationSet

	stop      context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a Manager and, when Config.CleanupInterval is positive, starts
// the periodic expiry sweep.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:  DefaultConfig(),
		now:     time.Now,
		revoked: newRevocationSet(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.config = m.config.withDefaults()
	if m.log == nil {
		m.log = logger.Discard()
	}
	m.log = m.log.With(logger.Component("session"))
	if m.cache == nil {
		m.cache = NewMemoryCache()
	}
	if m.durable == nil {
		m.durable = NewMemoryDurable()
	}
	if m.transport == nil {
		header := NewHeaderTransport(m.config.HeaderScheme)
		if m.cookies != nil {
			m.transport = NewCompositeTransport(NewCookieTransport(m.cookies, m.config), header)
		} else {
			m.transport = header
		}
	}
	if m.audit == nil {
		m.audit = audit.NewLogger(audit.NewSlogStorage(m.log), audit.WithIPExtractor(clientip.Lookup))
	}
	m.store = NewStore(m.cache, m.durable, m.log)

	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	if m.config.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop(ctx)
	}

	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Transport returns the token transport used by the middleware.
func (m *Manager) Transport() Transport {
	return m.transport
}

// Create starts a session for userID bound to rc.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, rc RequestContext) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	csrf, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		Token:          token,
		UserID:         userID,
		Fingerprint:    fingerprint.Generate(rc.UserAgent, rc.IP),
		IP:             rc.IP,
		IPSubnet:       fingerprint.Subnet(rc.IP),
		UserAgent:      rc.UserAgent,
		CSRFToken:      csrf,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(m.config.TTL),
	}

	if err := m.store.Put(ctx, s); err != nil {
		m.log.ErrorContext(ctx, "failed to store session", logger.UserID(userID), logger.Error(err))
		return nil, err
	}

	m.log.InfoContext(ctx, "session created", logger.SessionID(token), logger.UserID(userID), logger.IP(rc.IP))
	m.record(m.audit.Log(ctx, ActionCreate,
		audit.WithUserID(userID.String()),
		audit.WithSessionID(token),
		audit.WithIP(rc.IP),
	))

	return s.Clone(), nil
}

// Validate resolves token for a request from rc. It returns the session when
// valid, otherwise one of ErrRevoked, ErrNotFoundOrExpired,
// ErrFingerprintMismatch or ErrStoreUnavailable. A valid session has its last
// activity refreshed.
func (m *Manager) Validate(ctx context.Context, token string, rc RequestContext) (*Session, error) {
	return m.validate(ctx, token, rc, true)
}

func (m *Manager) validate(ctx context.Context, token string, rc RequestContext, touch bool) (*Session, error) {
	if token == "" {
		return nil, ErrNoTokenProvided
	}

	if m.revoked.contains(token) {
		return nil, m.reject(ctx, token, nil, rc, ErrRevoked)
	}

	now := m.now()
	s, err := m.store.Lookup(ctx, token, now)
	if err != nil {
		if errors.Is(err, ErrNotFoundOrExpired) {
			return nil, m.reject(ctx, token, nil, rc, ErrNotFoundOrExpired)
		}
		m.log.ErrorContext(ctx, "session lookup failed", logger.SessionID(token), logger.Error(err))
		return nil, err
	}

	current := fingerprint.Generate(rc.UserAgent, rc.IP)
	if !constantTimeEqual(current, s.Fingerprint) && s.UserAgent != rc.UserAgent {
		if err := m.revoke(ctx, s.Token); err != nil {
			m.log.ErrorContext(ctx, "failed to revoke hijacked session", logger.SessionID(token), logger.Error(err))
		}
		return nil, m.reject(ctx, token, s, rc, ErrFingerprintMismatch)
	}

	if touch {
		if now.After(s.LastActivityAt) {
			s.LastActivityAt = now
		}
		if err := m.store.Touch(ctx, s); err != nil {
			if errors.Is(err, ErrNotFoundOrExpired) {
				return nil, m.reject(ctx, token, s, rc, ErrNotFoundOrExpired)
			}
			m.log.ErrorContext(ctx, "failed to refresh session activity", logger.SessionID(token), logger.Error(err))
			return nil, err
		}
	}

	return s, nil
}

// reject logs and audits a failed validation and returns err.
func (m *Manager) reject(ctx context.Context, token string, s *Session, rc RequestContext, err error) error {
	status := StatusOf(err)
	opts := []audit.EventOption{audit.WithSessionID(token), audit.WithIP(rc.IP)}
	var uid any
	if s != nil {
		uid = s.UserID
		opts = append(opts, audit.WithUserID(s.UserID.String()))
	}

	m.log.InfoContext(ctx, "session rejected",
		logger.SessionID(token),
		logger.UserID(uid),
		logger.IP(rc.IP),
		logger.Outcome(string(status)),
	)
	m.record(m.audit.LogFailure(ctx, ActionValidate, string(status), opts...))
	return err
}

// Revoke invalidates token. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.revokeOwned(ctx, token, nil, "")
}

// revokeOwned is Revoke with the owner and client address recorded in the
// audit event when the caller knows them.
func (m *Manager) revokeOwned(ctx context.Context, token string, owner *Session, ip string) error {
	if token == "" {
		return nil
	}
	if err := m.revoke(ctx, token); err != nil {
		m.log.ErrorContext(ctx, "failed to revoke session", logger.SessionID(token), logger.Error(err))
		return err
	}

	opts := []audit.EventOption{audit.WithSessionID(token)}
	var uid any
	if owner != nil {
		uid = owner.UserID
		opts = append(opts, audit.WithUserID(owner.UserID.String()))
	}
	if ip != "" {
		opts = append(opts, audit.WithIP(ip))
	}
	m.log.InfoContext(ctx, "session revoked", logger.SessionID(token), logger.UserID(uid))
	m.record(m.audit.Log(ctx, ActionRevoke, opts...))
	return nil
}

// revoke marks token revoked for the TTL and removes it from both tiers.
func (m *Manager) revoke(ctx context.Context, token string) error {
	m.revoked.add(token, m.now().Add(m.config.TTL))
	return m.store.Remove(ctx, token)
}

// RevokeAll invalidates every session of userID except exceptToken (which may
// be empty) and returns how many were revoked. On error nothing is reported
// as revoked and the caller should retry.
func (m *Manager) RevokeAll(ctx context.Context, userID uuid.UUID, exceptToken string) (int, error) {
	tokens, err := m.store.RemoveByUser(ctx, userID, exceptToken)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to revoke user sessions", logger.UserID(userID), logger.Error(err))
		m.record(m.audit.LogError(ctx, ActionRevokeAll, err, audit.WithUserID(userID.String())))
		return 0, err
	}

	until := m.now().Add(m.config.TTL)
	for _, t := range tokens {
		m.revoked.add(t, until)
	}

	m.log.InfoContext(ctx, "user sessions revoked", logger.UserID(userID), slog.Int("count", len(tokens)))
	opts := []audit.EventOption{
		audit.WithUserID(userID.String()),
		audit.WithMetadata("revoked", len(tokens)),
	}
	if exceptToken != "" {
		opts = append(opts, audit.WithMetadata("kept_session_id", logger.RedactToken(exceptToken)))
	}
	m.record(m.audit.Log(ctx, ActionRevokeAll, opts...))
	return len(tokens), nil
}

// Rotate replaces a valid session with a new one for the same user bound to
// rc and revokes the old token. When the old session is not valid it returns
// nil and an error matching ErrNotRotated and the validation reason.
func (m *Manager) Rotate(ctx context.Context, oldToken string, rc RequestContext) (*Session, error) {
	old, err := m.validate(ctx, oldToken, rc, false)
	if err != nil {
		return nil, errors.Join(ErrNotRotated, err)
	}

	next, err := m.Create(ctx, old.UserID, rc)
	if err != nil {
		return nil, err
	}

	if err := m.revoke(ctx, old.Token); err != nil {
		m.log.ErrorContext(ctx, "failed to revoke rotated session", logger.SessionID(old.Token), logger.Error(err))
		if rerr := m.revoke(ctx, next.Token); rerr != nil {
			m.log.ErrorContext(ctx, "failed to revoke replacement session", logger.SessionID(next.Token), logger.Error(rerr))
		}
		return nil, err
	}

	m.log.InfoContext(ctx, "session rotated",
		logger.UserID(old.UserID),
		logger.SessionID(old.Token),
		slog.String("new_session_id", logger.RedactToken(next.Token)),
	)
	m.record(m.audit.Log(ctx, ActionRotate,
		audit.WithUserID(old.UserID.String()),
		audit.WithSessionID(old.Token),
		audit.WithMetadata("new_session_id", logger.RedactToken(next.Token)),
	))
	return next, nil
}

// CleanupExpired deletes expired durable rows, evicts cache entries idle for
// longer than the TTL and forgets revocations that can no longer matter.
// Running it again immediately removes nothing.
func (m *Manager) CleanupExpired(ctx context.Context) (CleanupStats, error) {
	began := time.Now()
	now := m.now()
	durable, cached, err := m.store.Sweep(ctx, now.Add(-m.config.TTL), now)
	if err != nil {
		m.log.ErrorContext(ctx, "session cleanup failed", logger.Error(err))
		return CleanupStats{}, err
	}

	stats := CleanupStats{
		DurableDeleted:    durable,
		CacheEvicted:      cached,
		RevocationsPruned: m.revoked.prune(now),
	}
	m.log.InfoContext(ctx, "expired sessions cleaned",
		slog.Int("durable_deleted", stats.DurableDeleted),
		slog.Int("cache_evicted", stats.CacheEvicted),
		slog.Int("revocations_pruned", stats.RevocationsPruned),
		logger.Duration(time.Since(began)),
	)
	return stats, nil
}

// VerifyCSRF compares token with the session's CSRF token in constant time.
func (m *Manager) VerifyCSRF(s *Session, token string) error {
	if s == nil || token == "" || !constantTimeEqual(s.CSRFToken, token) {
		return ErrInvalidCSRFToken
	}
	return nil
}

// Close stops the background sweep and waits for it to exit.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.stop()
		m.wg.Wait()
	})
	return nil
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = m.CleanupExpired(ctx)
		}
	}
}

// record logs audit sink failures; they never fail the session operation.
func (m *Manager) record(err error) {
	if err != nil {
		m.log.Warn("audit write failed", logger.Error(err))
	}
}
