package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) SalesTotals(ctx context.Context, storeID int64, now time.Time) (SalesTotals, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var totals SalesTotals
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_cents) FILTER (WHERE created_at >= $2), 0),
			COALESCE(SUM(total_cents) FILTER (WHERE created_at >= $3), 0),
			COUNT(*) FILTER (WHERE created_at >= $2)
		FROM sales
		WHERE store_id = $1 AND status <> 'annulee'`,
		storeID, dayStart, monthStart,
	).Scan(&totals.TodayCents, &totals.MonthCents, &totals.OrdersToday)
	return totals, err
}

func (r *PGRepository) StockAlerts(ctx context.Context, storeID int64) (int, error) {
	var alerts int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM stock_items
		WHERE store_id = $1 AND quantity <= alert_threshold`, storeID).Scan(&alerts)
	return alerts, err
}

func (r *PGRepository) WorkshopCounts(ctx context.Context, storeID int64) (WorkshopCounts, error) {
	var counts WorkshopCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('recue', 'en_cours')),
			COUNT(*) FILTER (WHERE status = 'prete')
		FROM workshop_orders
		WHERE store_id = $1`, storeID).Scan(&counts.Pending, &counts.Ready)
	return counts, err
}

func (r *PGRepository) ClientsTotal(ctx context.Context, storeID int64) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM clients WHERE store_id = $1`, storeID).Scan(&total)
	return total, err
}

func (r *PGRepository) UnreadMessages(ctx context.Context, storeID int64) (int, error) {
	var unread int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM contact_messages
		WHERE store_id = $1 AND NOT is_read`, storeID).Scan(&unread)
	return unread, err
}
