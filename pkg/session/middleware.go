package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/rbac"
)

// Client-facing messages. Validation failures share one message so clients
// cannot tell which check failed.
const (
	msgAuthRequired   = "authentication required"
	msgInvalidSession = "invalid or expired session"
	msgSystemError    = "authentication system error"
	msgInvalidCSRF    = "invalid csrf token"
)

// RequireAuth admits requests carrying a valid session whose owner is an
// active identity. The session, the identity and the rbac subject are added
// to the request context.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := m.transport.GetToken(r)
		if err != nil || token == "" {
			http.Error(w, msgAuthRequired, http.StatusUnauthorized)
			return
		}

		s, err := m.Validate(ctx, token, RequestContextFromRequest(r))
		if err != nil {
			m.fail(w, err)
			return
		}

		ident, err := m.loadIdentity(r, s)
		if err != nil {
			m.fail(w, err)
			return
		}

		ctx = WithSession(ctx, s)
		if ident != nil {
			ctx = identity.WithIdentity(ctx, ident)
			ctx = rbac.WithSubject(ctx, ident)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loadIdentity fetches the session owner. Without an identity provider it
// returns nil and no error.
func (m *Manager) loadIdentity(r *http.Request, s *Session) (*identity.Identity, error) {
	if m.identities == nil {
		return nil, nil
	}
	ctx := r.Context()

	ident, err := m.identities.GetActiveByID(ctx, s.UserID)
	switch {
	case err == nil:
		return ident, nil
	case errors.Is(err, identity.ErrNotFound), errors.Is(err, identity.ErrInactive):
		if rerr := m.revokeOwned(ctx, s.Token, s, RequestContextFromRequest(r).IP); rerr != nil {
			m.log.ErrorContext(ctx, "failed to revoke orphaned session", logger.SessionID(s.Token), logger.Error(rerr))
		}
		m.log.InfoContext(ctx, "session rejected",
			logger.SessionID(s.Token),
			logger.UserID(s.UserID),
			logger.Outcome("user_inactive_or_missing"),
		)
		m.record(m.audit.LogFailure(ctx, ActionValidate, "user_inactive_or_missing",
			audit.WithUserID(s.UserID.String()),
			audit.WithSessionID(s.Token),
		))
		return nil, errors.Join(ErrUserInactiveOrMissing, err)
	default:
		m.log.ErrorContext(ctx, "identity lookup failed", logger.UserID(s.UserID), logger.Error(err))
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
}

func (m *Manager) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		http.Error(w, msgSystemError, http.StatusInternalServerError)
		return
	}
	_ = m.transport.ClearToken(w)
	http.Error(w, msgInvalidSession, http.StatusUnauthorized)
}

// RequireCSRF rejects state-changing requests whose CSRF header does not
// match the session's token. Mount it behind RequireAuth.
func (m *Manager) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		s, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, msgAuthRequired, http.StatusUnauthorized)
			return
		}
		if err := m.VerifyCSRF(s, r.Header.Get(m.config.CSRFHeader)); err != nil {
			m.log.InfoContext(r.Context(), "csrf check failed", logger.SessionID(s.Token), logger.UserID(s.UserID))
			http.Error(w, msgInvalidCSRF, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
