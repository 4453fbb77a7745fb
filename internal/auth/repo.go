package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
	MarkVerified(ctx context.Context, userID int64, at time.Time) error
	CreateVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (int64, error)
	CreatePasswordResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumePasswordResetToken(ctx context.Context, token, email string) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

const uniqueViolation = "23505"

const userColumns = `id, email, first_name, last_name, phone, password_hash, role, permissions, is_active, email_verified_at, last_login, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user     User
		role     string
		rawPerms []byte
	)
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Phone,
		&user.PasswordHash, &role, &rawPerms, &user.IsActive,
		&user.EmailVerifiedAt, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt)
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

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new unverified account.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.Email, user.FirstName, user.LastName, user.Phone, user.PasswordHash, string(user.Role), user.IsActive,
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

// RecordLogin stamps last_login.
func (r *PGRepository) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, userID, at)
	return err
}

// MarkVerified stamps email_verified_at.
func (r *PGRepository) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET email_verified_at = $2, updated_at = now() WHERE id = $1`, userID, at)
	return err
}

// CreateVerificationToken stores a one-time email verification token.
func (r *PGRepository) CreateVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_verification_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	return err
}

// ConsumeVerificationToken deletes an unexpired token and returns its owner.
func (r *PGRepository) ConsumeVerificationToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `
		DELETE FROM email_verification_tokens
		WHERE token = $1 AND expires_at > now()
		RETURNING user_id`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrInvalidToken
		}
		return 0, err
	}
	return userID, nil
}

// CreatePasswordResetToken stores a one-time reset token, replacing any
// outstanding one for the same user.
func (r *PGRepository) CreatePasswordResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		token, userID, expiresAt)
	return err
}

// ConsumePasswordResetToken deletes an unexpired token matching both the
// token value and the account email, returning the owner.
func (r *PGRepository) ConsumePasswordResetToken(ctx context.Context, token, email string) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `
		DELETE FROM password_reset_tokens t
		USING users u
		WHERE t.user_id = u.id AND t.token = $1 AND lower(u.email) = lower($2) AND t.expires_at > now()
		RETURNING t.user_id`, token, email).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrInvalidToken
		}
		return 0, err
	}
	return userID, nil
}

// UpdatePassword replaces the stored hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, passwordHash)
	return err
}

var _ Repository = (*PGRepository)(nil)
