package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
)

// TransferService executes atomic peer-to-peer wallet movements on top of
// the ledger store. Conflicting writers are linearized by the per-account
// version check: losers re-read and retry up to MaxConflictRetries before
// ErrContention surfaces.
type TransferService struct {
	txManager   TransactionManager
	accounts    *AccountService
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	txManager TransactionManager,
	accounts *AccountService,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransferService {
	return &TransferService{
		txManager:   txManager,
		accounts:    accounts,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// TransferInput represents a transfer request.
type TransferInput struct {
	SenderHandle   string
	ReceiverHandle string
	Amount         int64
	IdempotencyKey string
}

// Transfer moves amount paisa from sender to receiver, appending exactly
// one debit and one credit entry sharing a correlation id derived from the
// idempotency key. Replaying the same key returns the prior result without
// writing anything.
func (s *TransferService) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	transfer := &domain.Transfer{
		CorrelationID:  "txn:" + input.IdempotencyKey,
		SenderHandle:   domain.NormalizeHandle(input.SenderHandle),
		ReceiverHandle: domain.NormalizeHandle(input.ReceiverHandle),
		Amount:         input.Amount,
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	sender, err := s.accounts.GetOrCreateByHandle(ctx, transfer.SenderHandle)
	if err != nil {
		return nil, err
	}

	// Idempotent replay: a prior debit with this correlation id means the
	// transfer already happened.
	if prior, err := s.entryRepo.GetByCorrelation(ctx, sender.ID, transfer.CorrelationID); err == nil {
		transfer.DebitEntryID = prior.ID
		transfer.CreatedAt = prior.CreatedAt
		transfer.Replayed = true
		return transfer, nil
	}

	receiver, err := s.accounts.GetOrCreateByHandle(ctx, transfer.ReceiverHandle)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		if attempt > 0 {
			if sender, err = s.accountRepo.GetByID(ctx, sender.ID); err != nil {
				return nil, err
			}
			if receiver, err = s.accountRepo.GetByID(ctx, receiver.ID); err != nil {
				return nil, err
			}
		}

		if err := sender.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}
		if err := receiver.ValidateCredit(); err != nil {
			return nil, err
		}

		now := time.Now().UTC()

		err := s.commitTransfer(ctx, sender, receiver, transfer, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		transfer.CreatedAt = now

		if s.metrics != nil {
			s.metrics.TransfersCompleted.Inc()
			s.metrics.TransferAmount.Observe(float64(input.Amount))
		}

		return transfer, nil
	}

	if s.metrics != nil {
		s.metrics.TransferContention.Inc()
	}

	return nil, domain.ErrContention
}

func (s *TransferService) commitTransfer(ctx context.Context, sender, receiver *domain.Account, transfer *domain.Transfer, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	debitID, creditID, err := applyPairedEntries(txCtx, tx, pairedEntriesInput{
		AccountRepo:   s.accountRepo,
		EntryRepo:     s.entryRepo,
		IDGen:         s.idGen,
		From:          sender,
		To:            receiver,
		Amount:        transfer.Amount,
		Reason:        domain.ReasonTransfer,
		CorrelationID: transfer.CorrelationID,
		Now:           now,
	})
	if err != nil {
		return err
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   transfer.CorrelationID,
			AggregateType: domain.AggregateTypeTransfer,
			EventType:     domain.EventTypeTransferCompleted,
			Payload: map[string]any{
				"sender_handle":   transfer.SenderHandle,
				"receiver_handle": transfer.ReceiverHandle,
				"amount":          transfer.Amount,
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	transfer.DebitEntryID = debitID
	transfer.CreditEntryID = creditID

	return nil
}

// pairedEntriesInput describes one debit/credit pair to apply atomically.
type pairedEntriesInput struct {
	AccountRepo   AccountRepository
	EntryRepo     EntryRepository
	IDGen         IDGenerator
	From          *domain.Account
	To            *domain.Account
	Amount        int64
	Reason        domain.EntryReason
	CorrelationID string
	Now           time.Time
}

// applyPairedEntries appends a matched debit and credit entry and both
// version-conditioned balance updates inside the caller's transaction. The
// whole pair takes effect or none of it does: a stale version on either
// account fails the transaction with ErrVersionConflict.
func applyPairedEntries(ctx context.Context, tx Transaction, in pairedEntriesInput) (string, string, error) {
	debit := &domain.LedgerEntry{
		ID:                    in.IDGen.Generate(),
		AccountID:             in.From.ID,
		Delta:                 -in.Amount,
		Reason:                in.Reason,
		CounterpartyAccountID: &in.To.ID,
		CorrelationID:         in.CorrelationID,
		AccountVersion:        in.From.Version + 1,
		CreatedAt:             in.Now,
	}
	if err := in.EntryRepo.Create(ctx, tx, debit); err != nil {
		return "", "", err
	}
	if err := in.AccountRepo.UpdateBalance(ctx, tx, in.From.ID, in.From.Balance-in.Amount, in.From.Version, in.Now); err != nil {
		return "", "", err
	}

	credit := &domain.LedgerEntry{
		ID:                    in.IDGen.Generate(),
		AccountID:             in.To.ID,
		Delta:                 in.Amount,
		Reason:                in.Reason,
		CounterpartyAccountID: &in.From.ID,
		CorrelationID:         in.CorrelationID,
		AccountVersion:        in.To.Version + 1,
		CreatedAt:             in.Now,
	}
	if err := in.EntryRepo.Create(ctx, tx, credit); err != nil {
		return "", "", err
	}
	if err := in.AccountRepo.UpdateBalance(ctx, tx, in.To.ID, in.To.Balance+in.Amount, in.To.Version, in.Now); err != nil {
		return "", "", err
	}

	return debit.ID, credit.ID, nil
}
