package domain

import (
	"time"
)

// EntryReason classifies a balance-affecting event.
type EntryReason string

const (
	ReasonTransfer     EntryReason = "transfer"
	ReasonPurchase     EntryReason = "purchase"
	ReasonRefund       EntryReason = "refund"
	ReasonPaymentTopup EntryReason = "payment_topup"
)

// LedgerEntry is an immutable journal record. The sum of all entries for an
// account equals its current balance; the store never updates a balance
// without appending the matching entry in the same transaction.
type LedgerEntry struct {
	ID                    string
	AccountID             string
	Delta                 int64
	Reason                EntryReason
	CounterpartyAccountID *string
	CorrelationID         string
	AccountVersion        int64
	CreatedAt             time.Time
}
