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

// PointRepository implements usecase.PointRepository.
type PointRepository struct {
	pool *pgxpool.Pool
}

// NewPointRepository creates a new PointRepository.
func NewPointRepository(pool *pgxpool.Pool) *PointRepository {
	return &PointRepository{pool: pool}
}

// Get returns the point balance, zero-valued when the account has never
// earned points.
func (r *PointRepository) Get(ctx context.Context, accountID string) (*domain.PointBalance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT account_id, lifetime_points, available_points, converted_points, updated_at
		FROM point_balances WHERE account_id = $1`,
		accountID,
	)

	var pb domain.PointBalance
	err := row.Scan(&pb.AccountID, &pb.LifetimePoints, &pb.AvailablePoints, &pb.ConvertedPoints, &pb.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.PointBalance{AccountID: accountID}, nil
		}
		return nil, err
	}

	return &pb, nil
}

// Award adds points to both lifetime and available totals, creating the
// row on first touch.
func (r *PointRepository) Award(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error {
	_, err := pick(tx, r.pool).Exec(ctx, `
		INSERT INTO point_balances (account_id, lifetime_points, available_points, converted_points, updated_at)
		VALUES ($1, $2, $2, 0, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET lifetime_points = point_balances.lifetime_points + $2,
		    available_points = point_balances.available_points + $2,
		    updated_at = $3`,
		accountID, points, at,
	)

	return err
}

// Convert moves points from available to converted. A negative amount
// restores a failed conversion. The guard clause keeps available from
// going negative without a separate read.
func (r *PointRepository) Convert(ctx context.Context, tx usecase.Transaction, accountID string, points int64, at time.Time) error {
	tag, err := pick(tx, r.pool).Exec(ctx, `
		UPDATE point_balances
		SET available_points = available_points - $1,
		    converted_points = converted_points + $1,
		    updated_at = $2
		WHERE account_id = $3 AND available_points - $1 >= 0`,
		points, at, accountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientPoints
	}

	return nil
}

// List pages all point balances, for the reconciliation sweep.
func (r *PointRepository) List(ctx context.Context, limit, offset int) ([]*domain.PointBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, lifetime_points, available_points, converted_points, updated_at
		FROM point_balances
		ORDER BY account_id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.PointBalance
	for rows.Next() {
		var pb domain.PointBalance
		if err := rows.Scan(&pb.AccountID, &pb.LifetimePoints, &pb.AvailablePoints, &pb.ConvertedPoints, &pb.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, &pb)
	}

	return balances, rows.Err()
}
