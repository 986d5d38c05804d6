package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository against the
// append-only ledger_entries journal. Rows are never updated or deleted.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, account_id, delta, reason, counterparty_account_id, correlation_id, account_version, created_at`

// Create appends one journal entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	_, err := pick(tx, r.pool).Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, delta, reason, counterparty_account_id, correlation_id, account_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AccountID, entry.Delta, string(entry.Reason),
		entry.CounterpartyAccountID, entry.CorrelationID, entry.AccountVersion, entry.CreatedAt,
	)

	return err
}

// GetByCorrelation finds the entry an account recorded under a
// correlation id, used for idempotent replay detection.
func (r *EntryRepository) GetByCorrelation(ctx context.Context, accountID, correlationID string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 AND correlation_id = $2`,
		accountID, correlationID,
	)

	return scanEntry(row)
}

// ListByAccount pages an account's journal, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumByAccount replays the journal for one account.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE account_id = $1`,
		accountID,
	).Scan(&sum)

	return sum, err
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		e      domain.LedgerEntry
		reason string
	)
	err := row.Scan(&e.ID, &e.AccountID, &e.Delta, &reason,
		&e.CounterpartyAccountID, &e.CorrelationID, &e.AccountVersion, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	e.Reason = domain.EntryReason(reason)

	return &e, nil
}
