package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
	"github.com/ecopay/ecoledger/internal/usecase/mocks"
)

func TestAccountService_GetOrCreateByHandle(t *testing.T) {
	tests := []struct {
		name        string
		handle      string
		expectError bool
		errorType   error
	}{
		{name: "creates valid handle", handle: "alice@upi"},
		{name: "normalizes case and whitespace", handle: "  Alice@UPI  "},
		{name: "allows dots and dashes", handle: "a.b-c_d@okbank"},
		{name: "rejects missing provider", handle: "alice", expectError: true, errorType: domain.ErrInvalidHandle},
		{name: "rejects empty", handle: "", expectError: true, errorType: domain.ErrInvalidHandle},
		{name: "rejects spaces inside", handle: "ali ce@upi", expectError: true, errorType: domain.ErrInvalidHandle},
		{name: "rejects provider starting with digit", handle: "alice@1bank", expectError: true, errorType: domain.ErrInvalidHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := usecase.NewAccountService(mocks.NewMockAccountRepository(), mocks.NewMockIDGenerator())

			account, err := svc.GetOrCreateByHandle(context.Background(), tt.handle)

			if tt.expectError {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.Handle != domain.NormalizeHandle(tt.handle) {
				t.Errorf("handle = %q, want %q", account.Handle, domain.NormalizeHandle(tt.handle))
			}
			if account.Balance != 0 || account.Version != 0 {
				t.Errorf("new account must start at zero: %+v", account)
			}
		})
	}
}

func TestAccountService_GetOrCreateByHandleLosesCreationRace(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	svc := usecase.NewAccountService(repo, mocks.NewMockIDGenerator())

	winner := &domain.Account{ID: "acc-winner", Handle: "alice@upi"}

	// The lookup misses, the insert hits the unique constraint, and the
	// service falls back to the row the winner created.
	lookups := 0
	repo.GetByHandleFunc = func(ctx context.Context, handle string) (*domain.Account, error) {
		lookups++
		if lookups == 1 {
			return nil, domain.ErrAccountNotFound
		}
		return winner, nil
	}
	repo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
		return errors.New("duplicate key value violates unique constraint")
	}

	account, err := svc.GetOrCreateByHandle(context.Background(), "alice@upi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != "acc-winner" {
		t.Errorf("account = %q, want the winner's row", account.ID)
	}
}

func TestAccountService_Freeze(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.Seed(&domain.Account{ID: "acc-1", Handle: "alice@upi", Balance: 5_000})
	svc := usecase.NewAccountService(repo, mocks.NewMockIDGenerator())

	account, err := svc.Freeze(context.Background(), "alice@upi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Frozen {
		t.Errorf("expected frozen account")
	}

	stored, _ := repo.GetByID(context.Background(), "acc-1")
	if !stored.Frozen {
		t.Errorf("freeze not persisted")
	}
}

func TestAccountService_FreezeUnknownHandle(t *testing.T) {
	svc := usecase.NewAccountService(mocks.NewMockAccountRepository(), mocks.NewMockIDGenerator())

	_, err := svc.Freeze(context.Background(), "ghost@upi")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
