package domain

import "errors"

var (
	// Not-found family.
	ErrAccountNotFound    = errors.New("account not found")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrListingNotFound    = errors.New("listing not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrConversionNotFound = errors.New("conversion request not found")
	ErrEventNotFound      = errors.New("outbox event not found")
	ErrCacheMiss          = errors.New("cache miss")

	// Ledger errors.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account is frozen")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")

	// Marketplace errors.
	ErrInsufficientInventory = errors.New("insufficient listing inventory")
	ErrListingUnavailable    = errors.New("listing is not available")
	ErrInvalidTransition     = errors.New("invalid state transition")

	// Points and conversion errors.
	ErrInsufficientPoints   = errors.New("insufficient eco-points")
	ErrBelowThreshold       = errors.New("available points below conversion threshold")
	ErrConversionInProgress = errors.New("a conversion is already minting for this account")
	ErrPaymentRejected      = errors.New("payment confirmation rejected")
	ErrCollaboratorFailure  = errors.New("external collaborator failure")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// Concurrency errors. VersionConflict is transient and retried
	// internally; Contention surfaces once the retry budget is spent.
	ErrVersionConflict = errors.New("version conflict")
	ErrContention      = errors.New("too much contention, retry later")
)
