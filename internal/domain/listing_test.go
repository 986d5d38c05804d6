package domain

import (
	"errors"
	"testing"
)

func TestListing_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from ListingStatus
		to   ListingStatus
		want bool
	}{
		{name: "pending to available", from: ListingStatusPendingApproval, to: ListingStatusAvailable, want: true},
		{name: "pending to rejected", from: ListingStatusPendingApproval, to: ListingStatusRejected, want: true},
		{name: "pending to suspended", from: ListingStatusPendingApproval, to: ListingStatusSuspended, want: false},
		{name: "available to sold out", from: ListingStatusAvailable, to: ListingStatusSoldOut, want: true},
		{name: "available to suspended", from: ListingStatusAvailable, to: ListingStatusSuspended, want: true},
		{name: "available to rejected", from: ListingStatusAvailable, to: ListingStatusRejected, want: false},
		{name: "sold out back to available", from: ListingStatusSoldOut, to: ListingStatusAvailable, want: true},
		{name: "suspended reactivated", from: ListingStatusSuspended, to: ListingStatusAvailable, want: true},
		{name: "suspended to sold out", from: ListingStatusSuspended, to: ListingStatusSoldOut, want: false},
		{name: "rejected is terminal", from: ListingStatusRejected, to: ListingStatusAvailable, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{Status: tt.from}
			if got := l.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestListing_ValidateReserve(t *testing.T) {
	tests := []struct {
		name    string
		status  ListingStatus
		credits int64
		amount  int64
		wantErr error
	}{
		{name: "full inventory", status: ListingStatusAvailable, credits: 10, amount: 10},
		{name: "partial inventory", status: ListingStatusAvailable, credits: 10, amount: 3},
		{name: "oversubscribed", status: ListingStatusAvailable, credits: 10, amount: 11, wantErr: ErrInsufficientInventory},
		{name: "zero amount", status: ListingStatusAvailable, credits: 10, amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative amount", status: ListingStatusAvailable, credits: 10, amount: -1, wantErr: ErrInvalidAmount},
		{name: "pending listing", status: ListingStatusPendingApproval, credits: 10, amount: 1, wantErr: ErrListingUnavailable},
		{name: "suspended listing", status: ListingStatusSuspended, credits: 10, amount: 1, wantErr: ErrListingUnavailable},
		{name: "sold out listing", status: ListingStatusSoldOut, credits: 0, amount: 1, wantErr: ErrListingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{Status: tt.status, CreditAmount: tt.credits}
			err := l.ValidateReserve(tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateReserve(%d) = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}
