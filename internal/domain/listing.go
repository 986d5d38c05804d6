package domain

import (
	"time"
)

// ListingStatus is the moderation/inventory state of a listing.
type ListingStatus string

const (
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusAvailable       ListingStatus = "available"
	ListingStatusSoldOut         ListingStatus = "sold_out"
	ListingStatusRejected        ListingStatus = "rejected"
	ListingStatusSuspended       ListingStatus = "suspended"
)

// Listing is carbon-credit inventory offered for sale. CreditAmount is the
// remaining inventory and only decreases, through reservation.
type Listing struct {
	ID              string
	SellerAccountID string
	CreditAmount    int64
	PricePerCredit  int64
	Status          ListingStatus
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// listingTransitions enumerates the legal status moves. Rejected is
// terminal; Suspended returns to Available only through an admin action.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingStatusPendingApproval: {ListingStatusAvailable, ListingStatusRejected},
	ListingStatusAvailable:       {ListingStatusSoldOut, ListingStatusSuspended},
	ListingStatusSoldOut:         {ListingStatusAvailable, ListingStatusSuspended},
	ListingStatusSuspended:       {ListingStatusAvailable},
}

// CanTransition reports whether moving to the target status is legal.
func (l *Listing) CanTransition(to ListingStatus) bool {
	for _, s := range listingTransitions[l.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateReserve checks status and inventory for a reservation of amount
// credits. Version conflicts are detected at write time, not here.
func (l *Listing) ValidateReserve(amount int64) error {
	if l.Status != ListingStatusAvailable {
		return ErrListingUnavailable
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > l.CreditAmount {
		return ErrInsufficientInventory
	}
	return nil
}

// ModerationDecision is an admin verdict on a pending listing.
type ModerationDecision string

const (
	ModerationApprove ModerationDecision = "approve"
	ModerationReject  ModerationDecision = "reject"
)
