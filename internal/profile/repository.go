package profile

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Get(ctx context.Context, userID int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, phone, role, permissions, is_active, last_login, created_at
		FROM users WHERE id = $1`, userID)
	var (
		account  Account
		role     string
		rawPerms []byte
	)
	err := row.Scan(&account.ID, &account.Email, &account.FirstName, &account.LastName,
		&account.Phone, &role, &rawPerms, &account.IsActive, &account.LastLogin, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	account.Role = authz.Role(role)
	if len(rawPerms) > 0 {
		var perms map[string][]string
		if err := json.Unmarshal(rawPerms, &perms); err != nil {
			return nil, err
		}
		account.Permissions = authz.FromStrings(perms)
	}
	return &account, nil
}

func (r *PGRepository) PasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return hash, nil
}

func (r *PGRepository) UpdateIdentity(ctx context.Context, userID int64, firstName, lastName, phone string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, phone = $4, updated_at = now()
		WHERE id = $1`, userID, firstName, lastName, phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
