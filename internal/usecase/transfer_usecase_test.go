package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
	"github.com/ecopay/ecoledger/internal/usecase/mocks"
)

func newTransferFixture() (*usecase.TransferService, *mocks.MockAccountRepository, *mocks.MockEntryRepository, *mocks.MockOutboxRepository) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	idGen := mocks.NewMockIDGenerator()
	accounts := usecase.NewAccountService(accountRepo, idGen)
	svc := usecase.NewTransferService(
		mocks.NewMockTransactionManager(),
		accounts,
		accountRepo,
		entryRepo,
		outboxRepo,
		idGen,
		nil,
	)
	return svc, accountRepo, entryRepo, outboxRepo
}

func seedAccount(repo *mocks.MockAccountRepository, id, handle string, balance int64) {
	repo.Seed(&domain.Account{
		ID:        id,
		Handle:    handle,
		Balance:   balance,
		Version:   0,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
}

func TestTransferService_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.TransferInput
		setup       func(*mocks.MockAccountRepository)
		expectError bool
		errorType   error
	}{
		{
			name: "successful transfer",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "bob@upi",
				Amount:         10_000,
				IdempotencyKey: "key-1",
			},
			setup: func(repo *mocks.MockAccountRepository) {
				seedAccount(repo, "acc-alice", "alice@upi", 50_000)
				seedAccount(repo, "acc-bob", "bob@upi", 0)
			},
		},
		{
			name: "reject same account",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "Alice@UPI",
				Amount:         100,
				IdempotencyKey: "key-2",
			},
			setup:       func(repo *mocks.MockAccountRepository) {},
			expectError: true,
			errorType:   domain.ErrSameAccount,
		},
		{
			name: "reject non-positive amount",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "bob@upi",
				Amount:         0,
				IdempotencyKey: "key-3",
			},
			setup:       func(repo *mocks.MockAccountRepository) {},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "reject amount above cap",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "bob@upi",
				Amount:         domain.MaxTransferAmount + 1,
				IdempotencyKey: "key-4",
			},
			setup:       func(repo *mocks.MockAccountRepository) {},
			expectError: true,
			errorType:   domain.ErrAmountTooLarge,
		},
		{
			name: "reject insufficient funds",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "bob@upi",
				Amount:         600,
				IdempotencyKey: "key-5",
			},
			setup: func(repo *mocks.MockAccountRepository) {
				seedAccount(repo, "acc-alice", "alice@upi", 500)
				seedAccount(repo, "acc-bob", "bob@upi", 0)
			},
			expectError: true,
			errorType:   domain.ErrInsufficientFunds,
		},
		{
			name: "reject frozen sender",
			input: usecase.TransferInput{
				SenderHandle:   "frozen@upi",
				ReceiverHandle: "bob@upi",
				Amount:         100,
				IdempotencyKey: "key-6",
			},
			setup: func(repo *mocks.MockAccountRepository) {
				repo.Seed(&domain.Account{ID: "acc-frozen", Handle: "frozen@upi", Balance: 1_000, Frozen: true})
				seedAccount(repo, "acc-bob", "bob@upi", 0)
			},
			expectError: true,
			errorType:   domain.ErrAccountFrozen,
		},
		{
			name: "reject frozen receiver",
			input: usecase.TransferInput{
				SenderHandle:   "alice@upi",
				ReceiverHandle: "frozen@upi",
				Amount:         100,
				IdempotencyKey: "key-7",
			},
			setup: func(repo *mocks.MockAccountRepository) {
				seedAccount(repo, "acc-alice", "alice@upi", 1_000)
				repo.Seed(&domain.Account{ID: "acc-frozen", Handle: "frozen@upi", Frozen: true})
			},
			expectError: true,
			errorType:   domain.ErrAccountFrozen,
		},
		{
			name: "reject malformed handle",
			input: usecase.TransferInput{
				SenderHandle:   "not a handle",
				ReceiverHandle: "bob@upi",
				Amount:         100,
				IdempotencyKey: "key-8",
			},
			setup:       func(repo *mocks.MockAccountRepository) {},
			expectError: true,
			errorType:   domain.ErrInvalidHandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, accountRepo, _, _ := newTransferFixture()
			tt.setup(accountRepo)

			result, err := svc.Transfer(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.DebitEntryID == "" || result.CreditEntryID == "" {
				t.Fatalf("expected both entry ids, got %+v", result)
			}
		})
	}
}

func TestTransferService_TransferMovesBalances(t *testing.T) {
	svc, accountRepo, entryRepo, outboxRepo := newTransferFixture()
	seedAccount(accountRepo, "acc-alice", "alice@upi", 50_000)
	seedAccount(accountRepo, "acc-bob", "bob@upi", 5_000)

	result, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         20_000,
		IdempotencyKey: "move-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Replayed {
		t.Fatalf("first execution must not be a replay")
	}

	sender, _ := accountRepo.GetByHandle(context.Background(), "alice@upi")
	receiver, _ := accountRepo.GetByHandle(context.Background(), "bob@upi")
	if sender.Balance != 30_000 {
		t.Errorf("sender balance = %d, want 30000", sender.Balance)
	}
	if receiver.Balance != 25_000 {
		t.Errorf("receiver balance = %d, want 25000", receiver.Balance)
	}
	if sender.Version != 1 || receiver.Version != 1 {
		t.Errorf("versions = %d/%d, want 1/1", sender.Version, receiver.Version)
	}

	entries := entryRepo.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	var sum int64
	for _, e := range entries {
		sum += e.Delta
		if e.CorrelationID != "txn:move-1" {
			t.Errorf("entry correlation = %q, want txn:move-1", e.CorrelationID)
		}
	}
	if sum != 0 {
		t.Errorf("entry deltas sum to %d, want 0", sum)
	}

	events := outboxRepo.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeTransferCompleted {
		t.Fatalf("expected one transfer.completed event, got %+v", events)
	}
}

func TestTransferService_IdempotentReplay(t *testing.T) {
	svc, accountRepo, entryRepo, _ := newTransferFixture()
	seedAccount(accountRepo, "acc-alice", "alice@upi", 10_000)
	seedAccount(accountRepo, "acc-bob", "bob@upi", 0)

	input := usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         4_000,
		IdempotencyKey: "replay-1",
	}

	first, err := svc.Transfer(context.Background(), input)
	if err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}

	second, err := svc.Transfer(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replay to be flagged")
	}
	if second.DebitEntryID != first.DebitEntryID {
		t.Errorf("replay debit id = %q, want %q", second.DebitEntryID, first.DebitEntryID)
	}

	sender, _ := accountRepo.GetByHandle(context.Background(), "alice@upi")
	if sender.Balance != 6_000 {
		t.Errorf("sender balance after replay = %d, want 6000", sender.Balance)
	}
	if len(entryRepo.All()) != 2 {
		t.Errorf("replay must not append entries, got %d", len(entryRepo.All()))
	}
}

func TestTransferService_SequentialSpendsExhaustBalance(t *testing.T) {
	svc, accountRepo, _, _ := newTransferFixture()
	seedAccount(accountRepo, "acc-alice", "alice@upi", 500)
	seedAccount(accountRepo, "acc-bob", "bob@upi", 0)

	if _, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         400,
		IdempotencyKey: "spend-1",
	}); err != nil {
		t.Fatalf("first spend failed: %v", err)
	}

	_, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         400,
		IdempotencyKey: "spend-2",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("second spend: expected ErrInsufficientFunds, got %v", err)
	}

	sender, _ := accountRepo.GetByHandle(context.Background(), "alice@upi")
	if sender.Balance != 100 {
		t.Errorf("sender balance = %d, want 100", sender.Balance)
	}
}

func TestTransferService_RetriesOnVersionConflict(t *testing.T) {
	svc, accountRepo, _, _ := newTransferFixture()
	seedAccount(accountRepo, "acc-alice", "alice@upi", 10_000)
	seedAccount(accountRepo, "acc-bob", "bob@upi", 0)

	// First attempt sees a stale version, as if a concurrent writer
	// committed between the read and the update.
	conflicts := 1
	realUpdate := accountRepo.UpdateBalanceFunc
	accountRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance, expectedVersion int64, updatedAt time.Time) error {
		if conflicts > 0 {
			conflicts--
			return domain.ErrVersionConflict
		}
		accountRepo.UpdateBalanceFunc = realUpdate
		return accountRepo.UpdateBalance(ctx, tx, id, balance, expectedVersion, updatedAt)
	}

	result, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         1_000,
		IdempotencyKey: "conflict-1",
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.DebitEntryID == "" {
		t.Fatalf("expected a committed transfer, got %+v", result)
	}
}

func TestTransferService_ContentionAfterRetryBudget(t *testing.T) {
	svc, accountRepo, _, _ := newTransferFixture()
	seedAccount(accountRepo, "acc-alice", "alice@upi", 10_000)
	seedAccount(accountRepo, "acc-bob", "bob@upi", 0)

	accountRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance, expectedVersion int64, updatedAt time.Time) error {
		return domain.ErrVersionConflict
	}

	_, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "alice@upi",
		ReceiverHandle: "bob@upi",
		Amount:         1_000,
		IdempotencyKey: "contention-1",
	})
	if !errors.Is(err, domain.ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
}

func TestTransferService_CreatesWalletsOnFirstTouch(t *testing.T) {
	svc, accountRepo, _, _ := newTransferFixture()

	// Neither handle exists; sender is created with zero balance and the
	// debit is rejected, but both wallets now exist.
	_, err := svc.Transfer(context.Background(), usecase.TransferInput{
		SenderHandle:   "new1@upi",
		ReceiverHandle: "new2@upi",
		Amount:         100,
		IdempotencyKey: "touch-1",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if _, err := accountRepo.GetByHandle(context.Background(), "new1@upi"); err != nil {
		t.Errorf("sender wallet not created: %v", err)
	}
	if _, err := accountRepo.GetByHandle(context.Background(), "new2@upi"); err != nil {
		t.Errorf("receiver wallet not created: %v", err)
	}
}
