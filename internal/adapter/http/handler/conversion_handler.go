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

// ConversionHandler handles eco-point and token conversion HTTP requests.
type ConversionHandler struct {
	conversionSvc *usecase.ConversionService
	ledgerSvc     *usecase.LedgerService
	accountSvc    *usecase.AccountService
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(conversionSvc *usecase.ConversionService, ledgerSvc *usecase.LedgerService, accountSvc *usecase.AccountService) *ConversionHandler {
	return &ConversionHandler{
		conversionSvc: conversionSvc,
		ledgerSvc:     ledgerSvc,
		accountSvc:    accountSvc,
	}
}

// Balance returns the caller's eco-point balance.
func (h *ConversionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.resolveAccount(w, r)
	if !ok {
		return
	}

	balance, err := h.ledgerSvc.GetPointBalance(r.Context(), account.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get point balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PointBalanceFromDomain(balance))
}

// Convert converts the caller's full available point balance to tokens.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	account, ok := h.resolveAccount(w, r)
	if !ok {
		return
	}

	var req dto.ConvertRequest
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

	conversion, err := h.conversionSvc.Convert(r.Context(), account.ID, key)
	if err != nil {
		// A failed mint still leaves a conversion record behind; the
		// status code tells the client the points were restored.
		if conversion != nil {
			writeJSON(w, mapDomainError(err), dto.ConversionFromDomain(conversion))
			return
		}
		writeError(w, mapDomainError(err), "failed to convert points", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ConversionFromDomain(conversion))
}

// Get retrieves one of the caller's conversion requests.
func (h *ConversionHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.resolveAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing conversion ID", "")
		return
	}

	conversion, err := h.conversionSvc.GetConversion(r.Context(), account.ID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get conversion", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionFromDomain(conversion))
}

// List lists the caller's conversion requests, newest first.
func (h *ConversionHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := h.resolveAccount(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	conversions, err := h.conversionSvc.ListConversions(r.Context(), account.ID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list conversions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionsFromDomain(conversions))
}

func (h *ConversionHandler) resolveAccount(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	principal, authed := middleware.GetPrincipal(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return nil, false
	}

	account, err := h.accountSvc.GetOrCreateByHandle(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve account", err.Error())
		return nil, false
	}

	return account, true
}
