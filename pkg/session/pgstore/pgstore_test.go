package pgstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/pg"
	"github.com/dmitrymomot/sessionguard/pkg/session"
	"github.com/dmitrymomot/sessionguard/pkg/session/pgstore"
)

func setup(t *testing.T) (*pgxpool.Pool, uuid.UUID) {
	t.Helper()

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

	user, err := identity.NewPostgresProvider(pool).Create(ctx,
		identity.Identity{Email: uuid.NewString() + "@example.com", Role: "member"}, "pw")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID) })

	return pool, user.ID
}

func newSession(userID uuid.UUID, now time.Time) *session.Session {
	return &session.Session{
		Token:          uuid.NewString(),
		UserID:         userID,
		Fingerprint:    "fp",
		IP:             "203.0.113.10",
		IPSubnet:       "203.0.113",
		UserAgent:      "test",
		CSRFToken:      uuid.NewString(),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func TestStore(t *testing.T) {
	pool, userID := setup(t)
	ctx := context.Background()
	store := pgstore.New(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	s1 := newSession(userID, now)
	s2 := newSession(userID, now)
	require.NoError(t, store.Insert(ctx, s1))
	require.NoError(t, store.Insert(ctx, s2))

	got, err := store.FindActive(ctx, s1.Token, now)
	require.NoError(t, err)
	assert.Equal(t, s1.CSRFToken, got.CSRFToken)
	assert.True(t, s1.ExpiresAt.Equal(got.ExpiresAt))

	_, err = store.FindActive(ctx, s1.Token, s1.ExpiresAt)
	assert.ErrorIs(t, err, session.ErrNotFoundOrExpired)

	later := now.Add(time.Minute)
	require.NoError(t, store.TouchActivity(ctx, s1.Token, later))
	require.NoError(t, store.TouchActivity(ctx, s1.Token, now))
	got, err = store.FindActive(ctx, s1.Token, now)
	require.NoError(t, err)
	assert.True(t, later.Equal(got.LastActivityAt), "activity never moves backwards")

	tokens, err := store.DeleteByUser(ctx, userID, s2.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{s1.Token}, tokens)
	assert.ErrorIs(t, store.TouchActivity(ctx, s1.Token, later), session.ErrNotFoundOrExpired)

	n, err := store.DeleteExpired(ctx, s2.ExpiresAt)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	_, err = store.FindActive(ctx, s2.Token, now)
	assert.ErrorIs(t, err, session.ErrNotFoundOrExpired)
	assert.NoError(t, store.Delete(ctx, s2.Token))
}

func TestStore_WithManager(t *testing.T) {
	pool, userID := setup(t)
	ctx := context.Background()

	mgr := session.New(
		session.WithConfig(session.Config{CleanupInterval: -1}),
		session.WithDurable(pgstore.New(pool)),
	)
	t.Cleanup(func() { _ = mgr.Close() })

	rc := session.RequestContext{IP: "203.0.113.10", UserAgent: "test"}
	s, err := mgr.Create(ctx, userID, rc)
	require.NoError(t, err)

	// A second manager shares only the database.
	other := session.New(
		session.WithConfig(session.Config{CleanupInterval: -1}),
		session.WithDurable(pgstore.New(pool)),
	)
	t.Cleanup(func() { _ = other.Close() })

	_, err = other.Validate(ctx, s.Token, rc)
	require.NoError(t, err)

	n, err := other.RevokeAll(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// mgr still holds the session in its own cache; the activity write finds
	// no row and rejects it.
	_, err = mgr.Validate(ctx, s.Token, rc)
	assert.ErrorIs(t, err, session.ErrNotFoundOrExpired)
}
