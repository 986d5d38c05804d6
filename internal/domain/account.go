package domain

import (
	"time"
)

// Account is a ledger identity addressed by a UPI-style handle. Balances
// are stored in integer minor-currency units (paisa) and only move through
// the transfer and settlement paths. Accounts are never deleted, only frozen.
type Account struct {
	ID        string
	Handle    string
	Balance   int64
	Version   int64
	Frozen    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks the account can lose amount paisa.
func (a *Account) ValidateDebit(amount int64) error {
	if a.Frozen {
		return ErrAccountFrozen
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks the account can receive funds.
func (a *Account) ValidateCredit() error {
	if a.Frozen {
		return ErrAccountFrozen
	}
	return nil
}
