package domain

import (
	"errors"
	"testing"
)

func TestValidateHandle(t *testing.T) {
	tests := []struct {
		name    string
		handle  string
		wantErr bool
	}{
		{name: "simple handle", handle: "ravi@upi"},
		{name: "dots and digits", handle: "ravi.kumar99@okbank"},
		{name: "underscore and hyphen", handle: "eco_user-1@pay"},
		{name: "uppercase is normalized first", handle: "Ravi@UPI"},
		{name: "surrounding whitespace", handle: "  ravi@upi  "},
		{name: "missing provider", handle: "ravi@", wantErr: true},
		{name: "missing name", handle: "@upi", wantErr: true},
		{name: "no separator", handle: "raviupi", wantErr: true},
		{name: "provider starts with digit", handle: "ravi@9bank", wantErr: true},
		{name: "name too short", handle: "r@upi", wantErr: true},
		{name: "empty", handle: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHandle(tt.handle)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateHandle(%q) = %v, wantErr %v", tt.handle, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidHandle) {
				t.Fatalf("expected ErrInvalidHandle, got %v", err)
			}
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	if got := NormalizeHandle("  Ravi.Kumar@UPI "); got != "ravi.kumar@upi" {
		t.Fatalf("NormalizeHandle = %q, want ravi.kumar@upi", got)
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "one paisa", amount: 1},
		{name: "max allowed", amount: MaxTransferAmount},
		{name: "zero", amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative", amount: -100, wantErr: ErrInvalidAmount},
		{name: "above cap", amount: MaxTransferAmount + 1, wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateAmount(%d) = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestClampPagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults applied", limit: 0, offset: 0, wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "negative values", limit: -1, offset: -5, wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "over max limit", limit: 500, offset: 40, wantLimit: MaxPageSize, wantOffset: 40},
		{name: "in range", limit: 10, offset: 30, wantLimit: 10, wantOffset: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := ClampPagination(tt.limit, tt.offset)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("ClampPagination(%d, %d) = (%d, %d), want (%d, %d)",
					tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
