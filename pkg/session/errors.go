package session

import "errors"

var (
	// ErrNoTokenProvided indicates the request carried no session token.
	ErrNoTokenProvided = errors.New("session.no_token")

	// ErrRevoked indicates the token was explicitly revoked.
	ErrRevoked = errors.New("session.revoked")

	// ErrNotFoundOrExpired indicates there is no live session for the token.
	ErrNotFoundOrExpired = errors.New("session.not_found_or_expired")

	// ErrFingerprintMismatch indicates the client device changed; the session has been revoked.
	ErrFingerprintMismatch = errors.New("session.fingerprint_mismatch")

	// ErrUserInactiveOrMissing indicates the session owner no longer exists or is deactivated.
	ErrUserInactiveOrMissing = errors.New("session.user_inactive_or_missing")

	// ErrStoreUnavailable indicates the durable store could not be reached.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrNotRotated indicates Rotate refused because the old session is not valid.
	ErrNotRotated = errors.New("session.not_rotated")

	// ErrTokenGeneration indicates the random source failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrInvalidCSRFToken indicates a state-changing request did not echo the session's CSRF token.
	ErrInvalidCSRFToken = errors.New("session.invalid_csrf_token")

	// ErrNoAuthenticator indicates Login was called on a manager without an authenticator.
	ErrNoAuthenticator = errors.New("session.no_authenticator")

	// ErrNoTransport indicates a composite transport was built without transports.
	ErrNoTransport = errors.New("session.no_transport")
)
