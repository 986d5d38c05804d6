package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, listing_id, buyer_account_id, credit_amount, total_price, status, idempotency_key, created_at, settled_at`

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	_, err := pick(tx, r.pool).Exec(ctx, `
		INSERT INTO orders (id, listing_id, buyer_account_id, credit_amount, total_price, status, idempotency_key, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.ListingID, order.BuyerAccountID, order.CreditAmount, order.TotalPrice,
		string(order.Status), order.IdempotencyKey, order.CreatedAt, order.SettledAt,
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	return scanOrder(row)
}

// GetByIdempotencyKey finds the order a buyer created under a key.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, buyerAccountID, key string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE buyer_account_id = $1 AND idempotency_key = $2`,
		buyerAccountID, key,
	)

	return scanOrder(row)
}

// UpdateStatus transitions the order, conditioned on the current status
// so terminal states stay terminal. Zero rows affected means the order
// already moved on.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.OrderStatus, settledAt *time.Time) error {
	tag, err := pick(tx, r.pool).Exec(ctx, `
		UPDATE orders
		SET status = $1, settled_at = $2
		WHERE id = $3 AND status = $4`,
		string(to), settledAt, id, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}

	return nil
}

// ListStale returns awaiting-confirmation orders created before the
// cutoff, oldest first, for the expiry sweep.
func (r *OrderRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3`,
		string(domain.OrderStatusAwaitingConfirmation), cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListByBuyer pages a buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerAccountID string, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE buyer_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		buyerAccountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &o.ListingID, &o.BuyerAccountID, &o.CreditAmount, &o.TotalPrice,
		&status, &o.IdempotencyKey, &o.CreatedAt, &o.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	return &o, nil
}
