package contact

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

const messageColumns = `id, store_id, name, email, phone, subject, body, is_read, created_at`

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, onlyUnread bool, limit, offset int) ([]Message, int, error) {
	filter := ``
	if onlyUnread {
		filter = ` WHERE NOT is_read`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`+filter).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM contact_messages`+filter+`
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Name, &m.Email, &m.Phone,
			&m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM contact_messages WHERE id = $1`, id).
		Scan(&m.ID, &m.StoreID, &m.Name, &m.Email, &m.Phone,
			&m.Subject, &m.Body, &m.IsRead, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) SetRead(ctx context.Context, id int64, read bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contact_messages SET is_read = $2 WHERE id = $1`, id, read)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
