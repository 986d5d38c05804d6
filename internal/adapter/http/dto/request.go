package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
)

// RupeesToPaisa converts a rupee amount to integer paisa. Amounts with
// sub-paisa precision are rejected.
func RupeesToPaisa(rupees decimal.Decimal) (int64, error) {
	paisa := rupees.Shift(2)
	if !paisa.IsInteger() {
		return 0, domain.ErrInvalidAmount
	}
	return paisa.IntPart(), nil
}

// PaisaToRupees converts integer paisa to a rupee amount.
func PaisaToRupees(paisa int64) decimal.Decimal {
	return decimal.NewFromInt(paisa).Shift(-2)
}

// TransferRequest represents a wallet-to-wallet transfer.
type TransferRequest struct {
	ReceiverHandle string          `json:"receiver_handle"`
	AmountRupees   decimal.Decimal `json:"amount_rupees"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// TopUpInitiateRequest asks the payment gateway for an order reference.
type TopUpInitiateRequest struct {
	AmountRupees decimal.Decimal `json:"amount_rupees"`
}

// TopUpConfirmRequest carries the client-side gateway confirmation.
type TopUpConfirmRequest struct {
	GatewayRef        string          `json:"gateway_ref"`
	ConfirmationToken string          `json:"confirmation_token"`
	AmountRupees      decimal.Decimal `json:"amount_rupees"`
	IdempotencyKey    string          `json:"idempotency_key"`
}

// CreateListingRequest represents a seller's offer of carbon credits.
type CreateListingRequest struct {
	CreditAmount         int64           `json:"credit_amount"`
	PricePerCreditRupees decimal.Decimal `json:"price_per_credit_rupees"`
}

// CreateOrderRequest claims credits from a listing.
type CreateOrderRequest struct {
	ListingID      string `json:"listing_id"`
	CreditAmount   int64  `json:"credit_amount"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ConfirmOrderRequest carries the gateway confirmation for an order.
type ConfirmOrderRequest struct {
	ConfirmationToken string `json:"confirmation_token"`
}

// ConvertRequest asks to convert the full available point balance.
type ConvertRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}
