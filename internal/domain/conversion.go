package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionStatus is the lifecycle state of a point-to-token conversion.
type ConversionStatus string

const (
	ConversionStatusRequested ConversionStatus = "requested"
	ConversionStatusMinting   ConversionStatus = "minting"
	ConversionStatusConfirmed ConversionStatus = "confirmed"
	ConversionStatusFailed    ConversionStatus = "failed"
)

// ConversionRequest is one attempt to exchange available eco-points for
// on-chain tokens. Points are debited up front and restored in full if the
// mint does not confirm; at most one request per account may be minting.
type ConversionRequest struct {
	ID             string
	AccountID      string
	PointsAmount   int64
	TokenAmount    decimal.Decimal
	Status         ConversionStatus
	ChainTxHash    *string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokensForPoints computes the token amount for a point debit at the given
// rate (points per token). Rates must be positive.
func TokensForPoints(points int64, pointsPerToken decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(points).Div(pointsPerToken)
}
