package identity

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks email/password pairs.
type Authenticator struct {
	store CredentialStore
	// dummyHash is compared against when the email is unknown, so lookups for
	// missing and existing users cost the same.
	dummyHash []byte
}

// NewAuthenticator returns an Authenticator over store.
func NewAuthenticator(store CredentialStore) *Authenticator {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("identity-dummy-password"), bcrypt.DefaultCost)
	return &Authenticator{store: store, dummyHash: dummy}
}

// Authenticate returns the active identity for email when password matches.
// Unknown emails, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials; store failures are returned as they are.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	id, hash, err := a.store.GetCredentialsByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !id.IsActive() {
		return nil, errors.Join(ErrInvalidCredentials, ErrInactive)
	}
	return id, nil
}

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Join(ErrPasswordHash, err)
	}
	return hash, nil
}
