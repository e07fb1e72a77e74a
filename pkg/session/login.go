package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
)

// Login checks credentials, creates a session for the client of r and hands
// its token to the transport. Wrong credentials yield
// identity.ErrInvalidCredentials.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email, password string) (*Session, error) {
	if m.authenticator == nil {
		return nil, ErrNoAuthenticator
	}
	ctx := r.Context()
	rc := RequestContextFromRequest(r)

	ident, err := m.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			m.record(m.audit.LogFailure(ctx, ActionLogin, "invalid_credentials", audit.WithIP(rc.IP)))
			return nil, err
		}
		m.record(m.audit.LogError(ctx, ActionLogin, err, audit.WithIP(rc.IP)))
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s, err := m.Create(ctx, ident.ID, rc)
	if err != nil {
		return nil, err
	}

	if err := m.transport.SetToken(w, r, s.Token, m.config.TTL); err != nil {
		_ = m.Revoke(ctx, s.Token)
		return nil, err
	}

	m.record(m.audit.Log(ctx, ActionLogin,
		audit.WithUserID(ident.ID.String()),
		audit.WithSessionID(s.Token),
		audit.WithIP(rc.IP),
	))
	return s, nil
}

// Logout revokes the request's session, if any, and clears the token on the client.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	if token, err := m.transport.GetToken(r); err == nil {
		ctx := r.Context()
		// The owner is only needed for the audit trail; a failed lookup
		// still revokes.
		owner, _ := m.store.Lookup(ctx, token, m.now())
		if err := m.revokeOwned(ctx, token, owner, RequestContextFromRequest(r).IP); err != nil {
			return err
		}
	}
	return m.transport.ClearToken(w)
}

// LogoutEverywhere revokes every other session of the authenticated user and
// keeps the current one. Mount it behind RequireAuth.
func (m *Manager) LogoutEverywhere(r *http.Request) (int, error) {
	s, ok := FromContext(r.Context())
	if !ok {
		return 0, ErrNoTokenProvided
	}
	return m.RevokeAll(r.Context(), s.UserID, s.Token)
}
