package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partsdesk/partsdesk/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, username, name, password_hash, is_admin, is_active, created_at, updated_at`

// FindByUsername fetches an operator account by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM operators WHERE username = $1`, username))
}

// FindByID fetches an operator account by ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM operators WHERE id = $1`, id))
}

func (r *PGRepository) scan(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Name, &a.PasswordHash, &a.IsAdmin, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
