package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
)

// LedgerService owns the read side of the ledger and the top-up path, the
// only way value enters the system.
type LedgerService struct {
	txManager   TransactionManager
	accounts    *AccountService
	accountRepo AccountRepository
	entryRepo   EntryRepository
	pointRepo   PointRepository
	gateway     PaymentGateway
	idGen       IDGenerator
	metrics     *metrics.Metrics

	gatewayTimeout time.Duration
	currency       string
}

// LedgerServiceConfig holds dependencies for LedgerService.
type LedgerServiceConfig struct {
	TxManager      TransactionManager
	Accounts       *AccountService
	AccountRepo    AccountRepository
	EntryRepo      EntryRepository
	PointRepo      PointRepository
	Gateway        PaymentGateway
	IDGen          IDGenerator
	Metrics        *metrics.Metrics
	GatewayTimeout time.Duration
	Currency       string
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	if cfg.GatewayTimeout == 0 {
		cfg.GatewayTimeout = 15 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}

	return &LedgerService{
		txManager:      cfg.TxManager,
		accounts:       cfg.Accounts,
		accountRepo:    cfg.AccountRepo,
		entryRepo:      cfg.EntryRepo,
		pointRepo:      cfg.PointRepo,
		gateway:        cfg.Gateway,
		idGen:          cfg.IDGen,
		metrics:        cfg.Metrics,
		gatewayTimeout: cfg.GatewayTimeout,
		currency:       cfg.Currency,
	}
}

// GetWallet returns the account for a handle, creating it on first touch.
func (s *LedgerService) GetWallet(ctx context.Context, handle string) (*domain.Account, error) {
	return s.accounts.GetOrCreateByHandle(ctx, handle)
}

// ListEntries pages through an account's journal.
func (s *LedgerService) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	return s.entryRepo.ListByAccount(ctx, accountID, limit, offset)
}

// GetPointBalance returns the eco-point balance for an account, zero on
// first touch.
func (s *LedgerService) GetPointBalance(ctx context.Context, accountID string) (*domain.PointBalance, error) {
	return s.pointRepo.Get(ctx, accountID)
}

// TopUpIntent is an expected inbound payment registered with the gateway.
type TopUpIntent struct {
	GatewayRef string
	Amount     int64
	Currency   string
}

// InitiateTopUp registers an expected payment with the gateway and returns
// the opaque order reference the client completes against.
func (s *LedgerService) InitiateTopUp(ctx context.Context, handle string, amount int64) (*TopUpIntent, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetOrCreateByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	ref, err := s.gateway.CreateOrder(gwCtx, amount, s.currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorFailure, err)
	}

	return &TopUpIntent{GatewayRef: ref, Amount: amount, Currency: s.currency}, nil
}

// ConfirmTopUpInput carries the client-submitted gateway confirmation.
type ConfirmTopUpInput struct {
	Handle            string
	GatewayRef        string
	ConfirmationToken string
	Amount            int64
	IdempotencyKey    string
}

// TopUpResult is the outcome of a confirmed top-up.
type TopUpResult struct {
	EntryID    string
	NewBalance int64
	Replayed   bool
}

// ConfirmTopUp verifies the confirmation with the gateway and appends a
// single payment_topup entry. Replays of the same idempotency key return
// the original result without touching the gateway again.
func (s *LedgerService) ConfirmTopUp(ctx context.Context, input ConfirmTopUpInput) (*TopUpResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetOrCreateByHandle(ctx, input.Handle)
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	correlationID := "topup:" + input.IdempotencyKey
	if prior, err := s.entryRepo.GetByCorrelation(ctx, account.ID, correlationID); err == nil {
		fresh, err := s.accountRepo.GetByID(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		return &TopUpResult{EntryID: prior.ID, NewBalance: fresh.Balance, Replayed: true}, nil
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	verdict, err := s.gateway.VerifyConfirmation(gwCtx, input.GatewayRef, input.ConfirmationToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorFailure, err)
	}
	if !verdict.Authentic || verdict.ConfirmedAmount != input.Amount {
		return nil, domain.ErrPaymentRejected
	}

	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		current, err := s.accountRepo.GetByID(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		entry := &domain.LedgerEntry{
			ID:             s.idGen.Generate(),
			AccountID:      current.ID,
			Delta:          input.Amount,
			Reason:         domain.ReasonPaymentTopup,
			CorrelationID:  correlationID,
			AccountVersion: current.Version + 1,
			CreatedAt:      now,
		}

		newBalance, err := s.applyEntry(ctx, current, entry, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.TopupsConfirmed.Inc()
			s.metrics.TopupAmount.Observe(float64(input.Amount))
		}

		return &TopUpResult{EntryID: entry.ID, NewBalance: newBalance}, nil
	}

	return nil, domain.ErrContention
}

// applyEntry appends one journal entry and the matching version-conditioned
// balance update in a single transaction.
func (s *LedgerService) applyEntry(ctx context.Context, account *domain.Account, entry *domain.LedgerEntry, now time.Time) (int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.entryRepo.Create(txCtx, tx, entry); err != nil {
		return 0, err
	}

	newBalance := account.Balance + entry.Delta
	if err := s.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, account.Version, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	return newBalance, nil
}
