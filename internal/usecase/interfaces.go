package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
)

// AccountRepository defines data access for ledger accounts. Balance
// updates are conditioned on the expected version; a stale version yields
// domain.ErrVersionConflict and the caller re-reads and retries.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Account, error)
	// UpdateBalance applies the new balance only if the stored version
	// equals expectedVersion, bumping it by one.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance, expectedVersion int64, updatedAt time.Time) error
	SetFrozen(ctx context.Context, id string, frozen bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for the append-only journal.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	// GetByCorrelation finds the entry for an account with the given
	// correlation id, used for idempotent replay detection.
	GetByCorrelation(ctx context.Context, accountID, correlationID string) (*domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	// SumByAccount replays the journal for one account.
	SumByAccount(ctx context.Context, accountID string) (int64, error)
}

// PointRepository defines data access for eco-point balances.
type PointRepository interface {
	Get(ctx context.Context, accountID string) (*domain.PointBalance, error)
	// Award adds points to both lifetime and available totals, creating
	// the row on first touch.
	Award(ctx context.Context, tx Transaction, accountID string, points int64, at time.Time) error
	// Convert moves points from available to converted. A negative move
	// restores a failed conversion. Fails with ErrInsufficientPoints if
	// available would go negative.
	Convert(ctx context.Context, tx Transaction, accountID string, points int64, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.PointBalance, error)
}

// ListingRepository defines data access for marketplace listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// UpdateInventory writes remaining credits and status conditioned on
	// the expected version.
	UpdateInventory(ctx context.Context, tx Transaction, id string, credits int64, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error
	// UpdateStatus moves the moderation state conditioned on the version.
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ListingStatus, expectedVersion int64, updatedAt time.Time) error
	ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error)
}

// OrderRepository defines data access for marketplace orders.
type OrderRepository interface {
	Create(ctx context.Context, tx Transaction, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, buyerAccountID, key string) (*domain.Order, error)
	// UpdateStatus transitions the order, conditioned on the current
	// status to keep terminal states terminal.
	UpdateStatus(ctx context.Context, tx Transaction, id string, from, to domain.OrderStatus, settledAt *time.Time) error
	// ListStale returns awaiting-confirmation orders created before the
	// cutoff, for the expiry sweep.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerAccountID string, limit, offset int) ([]*domain.Order, error)
}

// ConversionRepository defines data access for conversion requests.
type ConversionRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.ConversionRequest) error
	GetByID(ctx context.Context, id string) (*domain.ConversionRequest, error)
	GetByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.ConversionRequest, error)
	// HasMinting reports whether the account already has an in-flight
	// minting request.
	HasMinting(ctx context.Context, tx Transaction, accountID string) (bool, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ConversionStatus, txHash *string, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ConversionRequest, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Cache is a read-through cache for hot public reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PaymentVerdict is the payment gateway's judgement on a client-submitted
// confirmation payload.
type PaymentVerdict struct {
	Authentic       bool
	ConfirmedAmount int64
}

// PaymentGateway is the external payment collaborator. The service never
// checks signatures itself; it acts on the verdict.
type PaymentGateway interface {
	// CreateOrder registers an expected payment and returns an opaque
	// gateway order reference.
	CreateOrder(ctx context.Context, amount int64, currency string) (string, error)
	// VerifyConfirmation validates a confirmation token against the
	// gateway order reference.
	VerifyConfirmation(ctx context.Context, gatewayRef, confirmationToken string) (PaymentVerdict, error)
}

// MintResult is the outcome of a chain mint call.
type MintResult struct {
	TxHash string
}

// ChainMinter is the external chain collaborator. It honors exactly-once
// semantics for a given idempotency key; failure and timeout are symmetric
// "did not happen" outcomes for the caller.
type ChainMinter interface {
	Mint(ctx context.Context, accountID string, tokens decimal.Decimal, idempotencyKey string) (MintResult, error)
}
