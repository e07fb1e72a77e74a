package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/identity"
)

type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) GetCredentialsByEmail(ctx context.Context, email string) (*identity.Identity, []byte, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*identity.Identity), args.Get(1).([]byte), args.Error(2)
}

func TestMemoryProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := identity.NewMemoryProvider()

	alice, err := p.Add(identity.Identity{Email: " Alice@Example.com ", Role: "admin"}, "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, alice.ID)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, identity.StatusActive, alice.Status)

	_, err = p.Add(identity.Identity{Email: "alice@example.com"}, "x")
	assert.ErrorIs(t, err, identity.ErrDuplicateEmail)

	got, err := p.GetActiveByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.SubjectRole())

	_, err = p.GetActiveByID(ctx, uuid.New())
	assert.ErrorIs(t, err, identity.ErrNotFound)

	require.NoError(t, p.SetStatus(alice.ID, identity.StatusInactive))
	_, err = p.GetActiveByID(ctx, alice.ID)
	assert.ErrorIs(t, err, identity.ErrInactive)

	p.Remove(alice.ID)
	_, err = p.GetActiveByID(ctx, alice.ID)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := identity.NewMemoryProvider()
	bob, err := p.Add(identity.Identity{Email: "bob@example.com", Role: "member"}, "correct horse")
	require.NoError(t, err)

	auth := identity.NewAuthenticator(p)

	got, err := auth.Authenticate(ctx, "BOB@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = auth.Authenticate(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = auth.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	require.NoError(t, p.SetStatus(bob.ID, identity.StatusInactive))
	_, err = auth.Authenticate(ctx, "bob@example.com", "correct horse")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.ErrorIs(t, err, identity.ErrInactive)
}

func TestAuthenticator_StoreError(t *testing.T) {
	t.Parallel()

	store := new(mockCredentialStore)
	dbErr := errors.New("connection refused")
	store.On("GetCredentialsByEmail", mock.Anything, "carol@example.com").Return(nil, nil, dbErr)

	_, err := identity.NewAuthenticator(store).Authenticate(context.Background(), "carol@example.com", "pw")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
	store.AssertExpectations(t)
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := identity.FromContext(context.Background())
	assert.False(t, ok)

	id := &identity.Identity{ID: uuid.New()}
	got, ok := identity.FromContext(identity.WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Same(t, id, got)
}
