package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Status is the account state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Identity is a user as seen by the session layer.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	Status      Status    `json:"status"`
}

func (i *Identity) IsActive() bool {
	return i != nil && i.Status == StatusActive
}

// SubjectRole implements rbac.Subject.
func (i *Identity) SubjectRole() string { return i.Role }

// SubjectPermissions implements rbac.Subject.
func (i *Identity) SubjectPermissions() []string { return i.Permissions }

// Provider loads identities by id.
type Provider interface {
	// GetActiveByID returns ErrNotFound for unknown ids and ErrInactive for
	// deactivated accounts. Other errors mean the directory is unreachable.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*Identity, error)
}

// CredentialStore loads an identity with its password hash for login.
type CredentialStore interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Identity, []byte, error)
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type identityCtxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return id, ok && id != nil
}
