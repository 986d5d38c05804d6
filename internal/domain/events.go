package domain

import "time"

// Event types emitted through the transactional outbox.
const (
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypeListingModerated    = "listing.moderated"
	EventTypeOrderSettled        = "order.settled"
	EventTypeOrderReleased       = "order.released"
	EventTypeConversionConfirmed = "conversion.confirmed"
	EventTypeConversionFailed    = "conversion.failed"
)

// Aggregate types.
const (
	AggregateTypeTransfer   = "transfer"
	AggregateTypeListing    = "listing"
	AggregateTypeOrder      = "order"
	AggregateTypeConversion = "conversion"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published asynchronously.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
