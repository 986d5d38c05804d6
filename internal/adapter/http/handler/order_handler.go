package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecopay/ecoledger/internal/adapter/http/dto"
	"github.com/ecopay/ecoledger/internal/adapter/http/middleware"
	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// OrderHandler handles marketplace order HTTP requests.
type OrderHandler struct {
	settlementSvc *usecase.SettlementService
	accountSvc    *usecase.AccountService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(settlementSvc *usecase.SettlementService, accountSvc *usecase.AccountService) *OrderHandler {
	return &OrderHandler{settlementSvc: settlementSvc, accountSvc: accountSvc}
}

// Create reserves inventory and opens an order awaiting payment.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get(middleware.IdempotencyKeyHeader)
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing idempotency key", "")
		return
	}

	buyer, err := h.accountSvc.GetOrCreateByHandle(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve buyer", err.Error())
		return
	}

	order, err := h.settlementSvc.CreateOrder(r.Context(), usecase.CreateOrderInput{
		BuyerAccountID: buyer.ID,
		ListingID:      req.ListingID,
		CreditAmount:   req.CreditAmount,
		IdempotencyKey: key,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create order", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.OrderFromDomain(order))
}

// Confirm settles an order after verifying the payment confirmation.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownOrder(w, r)
	if !ok {
		return
	}

	var req dto.ConfirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settled, err := h.settlementSvc.ConfirmPayment(r.Context(), order.ID, req.ConfirmationToken)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(settled))
}

// Get retrieves one of the caller's orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownOrder(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// ListMine lists the caller's orders, newest first.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	buyer, err := h.accountSvc.GetOrCreateByHandle(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve buyer", err.Error())
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	orders, err := h.settlementSvc.ListOrdersByBuyer(r.Context(), buyer.ID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrdersFromDomain(orders))
}

// ownOrder loads the order in the URL and verifies it belongs to the
// caller. Foreign orders read as not found.
func (h *OrderHandler) ownOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return nil, false
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return nil, false
	}

	buyer, err := h.accountSvc.GetOrCreateByHandle(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve buyer", err.Error())
		return nil, false
	}

	order, err := h.settlementSvc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get order", err.Error())
		return nil, false
	}

	if order.BuyerAccountID != buyer.ID {
		writeError(w, http.StatusNotFound, "failed to get order", domain.ErrOrderNotFound.Error())
		return nil, false
	}

	return order, true
}
