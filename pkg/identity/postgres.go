package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessionguard/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by PostgresProvider.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresProvider reads identities from the users table.
type PostgresProvider struct {
	db DB
}

func NewPostgresProvider(db DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

const selectUserColumns = `id, email, role, permissions, status`

func scanIdentity(row pgx.Row, extra ...any) (*Identity, error) {
	var id Identity
	var status string
	dest := append([]any{&id.ID, &id.Email, &id.Role, &id.Permissions, &status}, extra...)
	if err := row.Scan(dest...); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id.Status = Status(status)
	return &id, nil
}

func (p *PostgresProvider) GetActiveByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	ident, err := scanIdentity(p.db.QueryRow(ctx,
		`SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if !ident.IsActive() {
		return nil, ErrInactive
	}
	return ident, nil
}

func (p *PostgresProvider) GetCredentialsByEmail(ctx context.Context, email string) (*Identity, []byte, error) {
	var hash string
	ident, err := scanIdentity(p.db.QueryRow(ctx,
		`SELECT `+selectUserColumns+`, password_hash FROM users WHERE email = $1`, NormalizeEmail(email)), &hash)
	if err != nil {
		return nil, nil, err
	}
	return ident, []byte(hash), nil
}

// Create inserts a user with a bcrypt hash of password. Used for seeding.
func (p *PostgresProvider) Create(ctx context.Context, id Identity, password string) (*Identity, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if id.ID == uuid.Nil {
		id.ID = uuid.New()
	}
	if id.Status == "" {
		id.Status = StatusActive
	}
	if id.Permissions == nil {
		id.Permissions = []string{}
	}
	id.Email = NormalizeEmail(id.Email)

	_, err = p.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, permissions, status) VALUES ($1, $2, $3, $4, $5, $6)`,
		id.ID, id.Email, string(hash), id.Role, id.Permissions, string(id.Status))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, errors.Join(ErrDuplicateEmail, err)
		}
		return nil, err
	}
	return &id, nil
}
