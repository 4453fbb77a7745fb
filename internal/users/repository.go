package users

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listQuery = `
	SELECT id, email, first_name, last_name, phone, role, permissions, is_active,
	       email_verified_at, last_login, created_at, updated_at
	FROM users ORDER BY id LIMIT $1 OFFSET $2`

// List returns a page of users and the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, listQuery, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get fetches a user with its store assignment.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, phone, role, permissions, is_active,
		       email_verified_at, last_login, created_at, updated_at
		FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT store_id FROM user_stores WHERE user_id = $1 ORDER BY store_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var storeID int64
		if err := rows.Scan(&storeID); err != nil {
			return nil, err
		}
		user.StoreIDs = append(user.StoreIDs, storeID)
	}
	return user, rows.Err()
}

// Create inserts an account created from the management screen.
func (r *Repository) Create(ctx context.Context, user *User, passwordHash string) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, phone, password_hash, role, is_active, email_verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		user.Email, user.FirstName, user.LastName, user.Phone, passwordHash,
		string(user.Role), user.IsActive, user.EmailVerifiedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update persists identity and role edits.
func (r *Repository) Update(ctx context.Context, user *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, phone = $4, role = $5, updated_at = now()
		WHERE id = $1`,
		user.ID, user.FirstName, user.LastName, user.Phone, string(user.Role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetPermissions stores the override as jsonb, NULL clearing it.
func (r *Repository) SetPermissions(ctx context.Context, id int64, override authz.PermissionSet) error {
	var payload any
	if override != nil {
		data, err := json.Marshal(override.Strings())
		if err != nil {
			return err
		}
		payload = data
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET permissions = $2, updated_at = now() WHERE id = $1`, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStores replaces the store assignment.
func (r *Repository) SetStores(ctx context.Context, id int64, storeIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx, `DELETE FROM user_stores WHERE user_id = $1`, id); err != nil {
		return err
	}
	for _, storeID := range storeIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO user_stores (user_id, store_id) VALUES ($1, $2)`, id, storeID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user     User
		role     string
		rawPerms []byte
	)
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Phone,
		&role, &rawPerms, &user.IsActive, &user.EmailVerifiedAt, &user.LastLogin,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Role = authz.Role(role)
	if len(rawPerms) > 0 {
		var perms map[string][]string
		if err := json.Unmarshal(rawPerms, &perms); err != nil {
			return nil, err
		}
		user.Permissions = authz.FromStrings(perms)
	}
	return &user, nil
}

var _ RepositoryPort = (*Repository)(nil)
