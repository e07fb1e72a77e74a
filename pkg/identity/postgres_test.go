package identity_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/pg"
)

func TestPostgresProvider(t *testing.T) {
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: url, MaxOpenConns: 4, RetryAttempts: 1}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pg.Migrate(ctx, pool, cfg, logger.Discard()))

	p := identity.NewPostgresProvider(pool)
	email := uuid.NewString() + "@example.com"

	created, err := p.Create(ctx, identity.Identity{Email: email, Role: "member", Permissions: []string{"reports.read"}}, "pw")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, created.ID) })

	_, err = p.Create(ctx, identity.Identity{Email: email}, "pw")
	assert.ErrorIs(t, err, identity.ErrDuplicateEmail)

	got, err := p.GetActiveByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports.read"}, got.Permissions)

	_, err = identity.NewAuthenticator(p).Authenticate(ctx, email, "pw")
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE users SET status = 'inactive' WHERE id = $1`, created.ID)
	require.NoError(t, err)
	_, err = p.GetActiveByID(ctx, created.ID)
	assert.ErrorIs(t, err, identity.ErrInactive)

	_, err = p.GetActiveByID(ctx, uuid.New())
	assert.ErrorIs(t, err, identity.ErrNotFound)
}
