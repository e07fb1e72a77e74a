// Package session issues, validates and revokes server-side login sessions.
//
// A session is an opaque 256-bit token bound to a user, the client's
// user-agent and IP subnet (as a fingerprint) and a CSRF token. Records live
// in two tiers composed by Store: a fast CacheBackend (in-process map or
// Redis) in front of a DurableBackend (PostgreSQL or memory) that survives
// restarts. Cache misses rehydrate from the durable tier on demand.
//
// Validation resolves a token to one of four outcomes, checked in order:
//
//   - revoked: the token is in the in-process revocation set
//   - not_found_or_expired: no live record exists
//   - fingerprint_mismatch: the user-agent changed; the session is revoked
//   - valid: last activity is refreshed
//
// IP drift with an unchanged user-agent is tolerated so roaming clients stay
// signed in.
//
// # Lifecycle
//
//	mgr := session.New(
//		session.WithConfig(cfg),
//		session.WithDurable(pgstore.New(pool)),
//		session.WithTransport(session.NewCookieTransport(cookies, cfg)),
//		session.WithIdentityProvider(users),
//	)
//	defer mgr.Close()
//
//	sess, err := mgr.Create(ctx, userID, session.RequestContextFromRequest(r))
//	err = mgr.Revoke(ctx, sess.Token)
//	n, err := mgr.RevokeAll(ctx, userID, keepToken)
//	next, err := mgr.Rotate(ctx, sess.Token, rc)
//
// New starts a background sweep (Config.CleanupInterval) that deletes expired
// rows and evicts idle cache entries; Close stops it.
//
// # Middleware
//
// RequireAuth authenticates a request from the session cookie or an
// "Authorization: Session <token>" header, loads the owning identity and puts
// the session, identity and rbac subject into the request context. Clients
// only ever see a generic 401; the precise reason is logged and audited.
//
// # Multiple instances
//
// The revocation set is per process. Every successful validation also
// touches the durable row, so once another instance revokes a token its
// next validation anywhere fails and drops the cached copy. Only requests
// already past that write when the revoke lands still succeed.
package session
