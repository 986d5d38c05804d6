package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
)

// AccountService handles wallet identity operations. Accounts are created
// on first touch of a handle and are frozen, never deleted.
type AccountService struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo AccountRepository, idGen IDGenerator) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// GetOrCreateByHandle resolves a handle to an account, creating a zero
// balance wallet on first use. Lost creation races fall back to the row
// the winner inserted.
func (s *AccountService) GetOrCreateByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	handle = domain.NormalizeHandle(handle)
	if err := domain.ValidateHandle(handle); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByHandle(ctx, handle)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account = &domain.Account{
		ID:        s.idGen.Generate(),
		Handle:    handle,
		Balance:   0,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if createErr := s.accountRepo.Create(ctx, nil, account); createErr != nil {
		// Unique-handle race: another request created the wallet first.
		if existing, getErr := s.accountRepo.GetByHandle(ctx, handle); getErr == nil {
			return existing, nil
		}
		return nil, createErr
	}

	return account, nil
}

// GetByHandle resolves a handle without creating an account.
func (s *AccountService) GetByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	return s.accountRepo.GetByHandle(ctx, domain.NormalizeHandle(handle))
}

// Freeze marks an account frozen. Frozen accounts cannot send, receive,
// list, buy, or convert.
func (s *AccountService) Freeze(ctx context.Context, handle string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByHandle(ctx, domain.NormalizeHandle(handle))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.SetFrozen(ctx, account.ID, true, now); err != nil {
		return nil, err
	}

	account.Frozen = true
	account.UpdatedAt = now

	return account, nil
}

// List lists accounts with pagination.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	return s.accountRepo.List(ctx, limit, offset)
}
