package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// ConversionRepository implements usecase.ConversionRepository. A partial
// unique index on (account_id) where status is requested or minting backs
// the one-in-flight rule at the storage layer.
type ConversionRepository struct {
	pool *pgxpool.Pool
}

// NewConversionRepository creates a new ConversionRepository.
func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

const conversionColumns = `id, account_id, points_amount, token_amount, status, chain_tx_hash, idempotency_key, created_at, updated_at`

const (
	pgErrUniqueViolation = "23505"

	// inFlightIndex is the partial unique index enforcing one in-flight
	// request per account. Two requests racing past the existence check
	// both reach the insert; the loser trips the index.
	inFlightIndex = "idx_conversions_account_in_flight"
)

// Create inserts a new conversion request.
func (r *ConversionRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.ConversionRequest) error {
	_, err := pick(tx, r.pool).Exec(ctx, `
		INSERT INTO conversion_requests (id, account_id, points_amount, token_amount, status, chain_tx_hash, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.AccountID, req.PointsAmount, req.TokenAmount.String(),
		string(req.Status), req.ChainTxHash, req.IdempotencyKey, req.CreatedAt, req.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == inFlightIndex {
		return domain.ErrConversionInProgress
	}

	return err
}

// GetByID retrieves a conversion request by ID.
func (r *ConversionRepository) GetByID(ctx context.Context, id string) (*domain.ConversionRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversionColumns+` FROM conversion_requests WHERE id = $1`, id)

	return scanConversion(row)
}

// GetByIdempotencyKey finds the request an account created under a key.
func (r *ConversionRepository) GetByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.ConversionRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversionColumns+` FROM conversion_requests
		WHERE account_id = $1 AND idempotency_key = $2`,
		accountID, key,
	)

	return scanConversion(row)
}

// HasMinting reports whether the account has an in-flight request.
func (r *ConversionRepository) HasMinting(ctx context.Context, tx usecase.Transaction, accountID string) (bool, error) {
	var exists bool
	err := pick(tx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversion_requests
			WHERE account_id = $1 AND status IN ($2, $3)
		)`,
		accountID, string(domain.ConversionStatusRequested), string(domain.ConversionStatusMinting),
	).Scan(&exists)

	return exists, err
}

// UpdateStatus moves the request's lifecycle state, stamping the chain
// receipt when one is provided.
func (r *ConversionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ConversionStatus, txHash *string, updatedAt time.Time) error {
	tag, err := pick(tx, r.pool).Exec(ctx, `
		UPDATE conversion_requests
		SET status = $1, chain_tx_hash = COALESCE($2, chain_tx_hash), updated_at = $3
		WHERE id = $4`,
		string(status), txHash, updatedAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversionNotFound
	}

	return nil
}

// ListByAccount pages an account's conversion history, newest first.
func (r *ConversionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ConversionRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversionColumns+` FROM conversion_requests
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.ConversionRequest
	for rows.Next() {
		req, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func scanConversion(row pgx.Row) (*domain.ConversionRequest, error) {
	var (
		c      domain.ConversionRequest
		tokens string
		status string
	)
	err := row.Scan(&c.ID, &c.AccountID, &c.PointsAmount, &tokens,
		&status, &c.ChainTxHash, &c.IdempotencyKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversionNotFound
		}
		return nil, err
	}

	c.TokenAmount, err = decimal.NewFromString(tokens)
	if err != nil {
		return nil, err
	}
	c.Status = domain.ConversionStatus(status)

	return &c, nil
}
