package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors.
var (
	ErrInvalidHandle  = errors.New("invalid wallet handle")
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
)

const (
	// MaxTransferAmount caps a single movement at 1 crore rupees in paisa.
	MaxTransferAmount int64 = 1_000_000_000

	MaxPageSize     = 100
	DefaultPageSize = 20
)

// handleRegex matches UPI-style virtual payment addresses: name@provider.
var handleRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,63}@[a-z][a-z0-9]{1,15}$`)

// ValidateHandle validates a UPI-style wallet handle.
func ValidateHandle(handle string) error {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if !handleRegex.MatchString(handle) {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return nil
}

// NormalizeHandle lowercases and trims a handle for storage and lookup.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// ValidateAmount validates a monetary amount in paisa.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxTransferAmount {
		return fmt.Errorf("%w: maximum is %d paisa", ErrAmountTooLarge, MaxTransferAmount)
	}
	return nil
}

// ClampPagination bounds page parameters to sane defaults.
func ClampPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
