package stores

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

const storeColumns = `id, name, address, phone, is_active, created_at`

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return store, nil
}

func (r *PGRepository) ForUser(ctx context.Context, userID int64) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.address, s.phone, s.is_active, s.created_at
		FROM stores s
		JOIN user_stores us ON us.store_id = s.id
		WHERE us.user_id = $1 AND s.is_active
		ORDER BY s.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Store, error) {
	out := []Store{}
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *store)
	}
	return out, rows.Err()
}

func scanStore(row pgx.Row) (*Store, error) {
	var store Store
	err := row.Scan(&store.ID, &store.Name, &store.Address, &store.Phone, &store.IsActive, &store.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &store, nil
}
