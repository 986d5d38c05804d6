package domain

import (
	"time"
)

// OrderStatus is the lifecycle state of a buyer's claim on a listing.
type OrderStatus string

const (
	OrderStatusCreated              OrderStatus = "created"
	OrderStatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	OrderStatusSettled              OrderStatus = "settled"
	OrderStatusFailed               OrderStatus = "failed"
	OrderStatusExpired              OrderStatus = "expired"
)

// Order is a buyer's reservation against a listing. The reserved credits
// are removed from the listing while the order awaits confirmation and are
// restored when it fails or expires.
type Order struct {
	ID             string
	ListingID      string
	BuyerAccountID string
	CreditAmount   int64
	TotalPrice     int64
	Status         OrderStatus
	IdempotencyKey string
	CreatedAt      time.Time
	SettledAt      *time.Time
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:              {OrderStatusAwaitingConfirmation},
	OrderStatusAwaitingConfirmation: {OrderStatusSettled, OrderStatusFailed, OrderStatusExpired},
}

// CanTransition reports whether moving to the target status is legal.
// Settled, Failed and Expired are terminal.
func (o *Order) CanTransition(to OrderStatus) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusSettled, OrderStatusFailed, OrderStatusExpired:
		return true
	}
	return false
}
