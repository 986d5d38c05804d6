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

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id, seller_account_id, credit_amount, price_per_credit, status, version, created_at, updated_at`

// Create inserts a new listing.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO listings (id, seller_account_id, credit_amount, price_per_credit, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		listing.ID, listing.SellerAccountID, listing.CreditAmount, listing.PricePerCredit,
		string(listing.Status), listing.Version, listing.CreatedAt, listing.UpdatedAt,
	)

	return err
}

// GetByID retrieves a listing by ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)

	return scanListing(row)
}

// UpdateInventory writes remaining credits and status conditioned on the
// expected version. Zero rows means a concurrent reservation won.
func (r *ListingRepository) UpdateInventory(ctx context.Context, tx usecase.Transaction, id string, credits int64, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error {
	tag, err := pick(tx, r.pool).Exec(ctx, `
		UPDATE listings
		SET credit_amount = $1, status = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		credits, string(status), updatedAt, id, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// UpdateStatus moves the moderation state conditioned on the version.
func (r *ListingRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error {
	tag, err := pick(tx, r.pool).Exec(ctx, `
		UPDATE listings
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		string(status), updatedAt, id, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// ListByStatus pages listings in one status, newest first.
func (r *ListingRepository) ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		string(status), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l      domain.Listing
		status string
	)
	err := row.Scan(&l.ID, &l.SellerAccountID, &l.CreditAmount, &l.PricePerCredit,
		&status, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	l.Status = domain.ListingStatus(status)

	return &l, nil
}
