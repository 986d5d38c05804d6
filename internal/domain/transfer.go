package domain

import (
	"time"
)

// Transfer is the result of a peer-to-peer wallet movement: one debit and
// one credit entry sharing a correlation id derived from the client's
// idempotency key.
type Transfer struct {
	CorrelationID  string
	SenderHandle   string
	ReceiverHandle string
	Amount         int64
	DebitEntryID   string
	CreditEntryID  string
	CreatedAt      time.Time
	Replayed       bool
}

// Validate checks the request shape before any balances are read.
func (t *Transfer) Validate() error {
	if t.SenderHandle == t.ReceiverHandle {
		return ErrSameAccount
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
