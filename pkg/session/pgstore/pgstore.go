// Package pgstore is the PostgreSQL durable tier for session.Manager. It
// expects the sessions table created by the pg package migrations.
package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessionguard/pkg/pg"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements session.DurableBackend.
type Store struct {
	db DB
}

var _ session.DurableBackend = (*Store)(nil)

func New(db DB) *Store {
	return &Store{db: db}
}

const sessionColumns = `token, user_id, fingerprint, ip, ip_subnet, user_agent, csrf_token, created_at, last_activity_at, expires_at`

func (s *Store) Insert(ctx context.Context, sess *session.Session) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sess.Token, sess.UserID, sess.Fingerprint, sess.IP, sess.IPSubnet, sess.UserAgent,
		sess.CSRFToken, sess.CreatedAt, sess.LastActivityAt, sess.ExpiresAt,
	)
	return err
}

func (s *Store) FindActive(ctx context.Context, token string, now time.Time) (*session.Session, error) {
	var sess session.Session
	err := s.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1 AND expires_at > $2`, token, now,
	).Scan(
		&sess.Token, &sess.UserID, &sess.Fingerprint, &sess.IP, &sess.IPSubnet, &sess.UserAgent,
		&sess.CSRFToken, &sess.CreatedAt, &sess.LastActivityAt, &sess.ExpiresAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, session.ErrNotFoundOrExpired
		}
		return nil, err
	}
	return &sess, nil
}

// TouchActivity never moves last_activity_at backwards.
func (s *Store) TouchActivity(ctx context.Context, token string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET last_activity_at = GREATEST(last_activity_at, $2) WHERE token = $1`, token, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFoundOrExpired
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteByUser runs as one statement so a concurrent failure leaves either
// all or none of the rows.
func (s *Store) DeleteByUser(ctx context.Context, userID uuid.UUID, exceptToken string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND token <> $2 RETURNING token`, userID, exceptToken)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
