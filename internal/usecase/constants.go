package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds any single database transaction.
	DefaultTransactionTimeout = 10 * time.Second

	// MaxConflictRetries bounds the re-read/retry cycle on version
	// conflicts before ErrContention surfaces.
	MaxConflictRetries = 3

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
