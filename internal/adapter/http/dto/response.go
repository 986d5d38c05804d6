package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID            string          `json:"id"`
	Handle        string          `json:"handle"`
	BalanceRupees decimal.Decimal `json:"balance_rupees"`
	Frozen        bool            `json:"frozen"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain account to a response.
func WalletFromDomain(a *domain.Account) *WalletResponse {
	return &WalletResponse{
		ID:            a.ID,
		Handle:        a.Handle,
		BalanceRupees: PaisaToRupees(a.Balance),
		Frozen:        a.Frozen,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// TransferResponse represents a completed transfer.
type TransferResponse struct {
	CorrelationID  string          `json:"correlation_id"`
	SenderHandle   string          `json:"sender_handle"`
	ReceiverHandle string          `json:"receiver_handle"`
	AmountRupees   decimal.Decimal `json:"amount_rupees"`
	DebitEntryID   string          `json:"debit_entry_id"`
	CreditEntryID  string          `json:"credit_entry_id"`
	CreatedAt      time.Time       `json:"created_at"`
	Replayed       bool            `json:"replayed"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		CorrelationID:  t.CorrelationID,
		SenderHandle:   t.SenderHandle,
		ReceiverHandle: t.ReceiverHandle,
		AmountRupees:   PaisaToRupees(t.Amount),
		DebitEntryID:   t.DebitEntryID,
		CreditEntryID:  t.CreditEntryID,
		CreatedAt:      t.CreatedAt,
		Replayed:       t.Replayed,
	}
}

// EntryResponse represents a ledger entry.
type EntryResponse struct {
	ID                    string          `json:"id"`
	AccountID             string          `json:"account_id"`
	DeltaRupees           decimal.Decimal `json:"delta_rupees"`
	Reason                string          `json:"reason"`
	CounterpartyAccountID *string         `json:"counterparty_account_id,omitempty"`
	CorrelationID         string          `json:"correlation_id"`
	CreatedAt             time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain ledger entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                    e.ID,
		AccountID:             e.AccountID,
		DeltaRupees:           PaisaToRupees(e.Delta),
		Reason:                string(e.Reason),
		CounterpartyAccountID: e.CounterpartyAccountID,
		CorrelationID:         e.CorrelationID,
		CreatedAt:             e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TopUpIntentResponse represents a registered gateway order.
type TopUpIntentResponse struct {
	GatewayRef   string          `json:"gateway_ref"`
	AmountRupees decimal.Decimal `json:"amount_rupees"`
	Currency     string          `json:"currency"`
}

// TopUpResultResponse represents a confirmed top-up.
type TopUpResultResponse struct {
	EntryID          string          `json:"entry_id"`
	NewBalanceRupees decimal.Decimal `json:"new_balance_rupees"`
	Replayed         bool            `json:"replayed"`
}

// ListingResponse represents a marketplace listing.
type ListingResponse struct {
	ID                   string          `json:"id"`
	SellerAccountID      string          `json:"seller_account_id"`
	CreditAmount         int64           `json:"credit_amount"`
	PricePerCreditRupees decimal.Decimal `json:"price_per_credit_rupees"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ListingFromDomain converts a domain listing to a response.
func ListingFromDomain(l *domain.Listing) *ListingResponse {
	return &ListingResponse{
		ID:                   l.ID,
		SellerAccountID:      l.SellerAccountID,
		CreditAmount:         l.CreditAmount,
		PricePerCreditRupees: PaisaToRupees(l.PricePerCredit),
		Status:               string(l.Status),
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

// ListingsFromDomain converts domain listings to responses.
func ListingsFromDomain(listings []*domain.Listing) []*ListingResponse {
	result := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		result[i] = ListingFromDomain(l)
	}
	return result
}

// OrderResponse represents a marketplace order.
type OrderResponse struct {
	ID               string          `json:"id"`
	ListingID        string          `json:"listing_id"`
	BuyerAccountID   string          `json:"buyer_account_id"`
	CreditAmount     int64           `json:"credit_amount"`
	TotalPriceRupees decimal.Decimal `json:"total_price_rupees"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	SettledAt        *time.Time      `json:"settled_at,omitempty"`
}

// OrderFromDomain converts a domain order to a response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:               o.ID,
		ListingID:        o.ListingID,
		BuyerAccountID:   o.BuyerAccountID,
		CreditAmount:     o.CreditAmount,
		TotalPriceRupees: PaisaToRupees(o.TotalPrice),
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		SettledAt:        o.SettledAt,
	}
}

// OrdersFromDomain converts domain orders to responses.
func OrdersFromDomain(orders []*domain.Order) []*OrderResponse {
	result := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderFromDomain(o)
	}
	return result
}

// PointBalanceResponse represents an eco-point balance.
type PointBalanceResponse struct {
	AccountID       string    `json:"account_id"`
	LifetimePoints  int64     `json:"lifetime_points"`
	AvailablePoints int64     `json:"available_points"`
	ConvertedPoints int64     `json:"converted_points"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PointBalanceFromDomain converts a domain point balance to a response.
func PointBalanceFromDomain(p *domain.PointBalance) *PointBalanceResponse {
	return &PointBalanceResponse{
		AccountID:       p.AccountID,
		LifetimePoints:  p.LifetimePoints,
		AvailablePoints: p.AvailablePoints,
		ConvertedPoints: p.ConvertedPoints,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ConversionResponse represents a token conversion request.
type ConversionResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	PointsAmount int64           `json:"points_amount"`
	TokenAmount  decimal.Decimal `json:"token_amount"`
	Status       string          `json:"status"`
	ChainTxHash  *string         `json:"chain_tx_hash,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ConversionFromDomain converts a domain conversion request to a response.
func ConversionFromDomain(c *domain.ConversionRequest) *ConversionResponse {
	return &ConversionResponse{
		ID:           c.ID,
		AccountID:    c.AccountID,
		PointsAmount: c.PointsAmount,
		TokenAmount:  c.TokenAmount,
		Status:       string(c.Status),
		ChainTxHash:  c.ChainTxHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ConversionsFromDomain converts domain conversion requests to responses.
func ConversionsFromDomain(conversions []*domain.ConversionRequest) []*ConversionResponse {
	result := make([]*ConversionResponse, len(conversions))
	for i, c := range conversions {
		result[i] = ConversionFromDomain(c)
	}
	return result
}

// ConsistencyReportResponse represents a ledger consistency sweep.
type ConsistencyReportResponse struct {
	CheckedAccounts   int                          `json:"checked_accounts"`
	CheckedPoints     int                          `json:"checked_points"`
	Consistent        bool                         `json:"consistent"`
	AccountMismatches []usecase.AccountDiscrepancy `json:"account_mismatches"`
	PointMismatches   []usecase.PointDiscrepancy   `json:"point_mismatches"`
	StartedAt         time.Time                    `json:"started_at"`
	FinishedAt        time.Time                    `json:"finished_at"`
}

// ConsistencyReportFromUseCase converts a reconciliation report to a response.
func ConsistencyReportFromUseCase(r *usecase.ConsistencyReport) *ConsistencyReportResponse {
	return &ConsistencyReportResponse{
		CheckedAccounts:   r.CheckedAccounts,
		CheckedPoints:     r.CheckedPoints,
		Consistent:        r.Consistent(),
		AccountMismatches: r.AccountMismatches,
		PointMismatches:   r.PointMismatches,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
