package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ecopay/ecoledger/internal/adapter/http/dto"
	"github.com/ecopay/ecoledger/internal/adapter/http/middleware"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// WalletHandler handles wallet-related HTTP requests. The wallet is
// always the authenticated caller's; handles never appear in the URL.
type WalletHandler struct {
	ledgerSvc   *usecase.LedgerService
	transferSvc *usecase.TransferService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc *usecase.LedgerService, transferSvc *usecase.TransferService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc, transferSvc: transferSvc}
}

// Me returns the caller's wallet, creating it on first touch.
func (h *WalletHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	account, err := h.ledgerSvc.GetWallet(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(account))
}

// Entries lists the caller's ledger entries, newest first.
func (h *WalletHandler) Entries(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	account, err := h.ledgerSvc.GetWallet(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerSvc.ListEntries(r.Context(), account.ID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Transfer moves money from the caller's wallet to another handle.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := dto.RupeesToPaisa(req.AmountRupees)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
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

	transfer, err := h.transferSvc.Transfer(r.Context(), usecase.TransferInput{
		SenderHandle:   principal.Handle,
		ReceiverHandle: req.ReceiverHandle,
		Amount:         amount,
		IdempotencyKey: key,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	status := http.StatusCreated
	if transfer.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.TransferFromDomain(transfer))
}

// TopUpInitiate registers an expected payment with the gateway.
func (h *WalletHandler) TopUpInitiate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TopUpInitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := dto.RupeesToPaisa(req.AmountRupees)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	intent, err := h.ledgerSvc.InitiateTopUp(r.Context(), principal.Handle, amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to initiate top-up", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TopUpIntentResponse{
		GatewayRef:   intent.GatewayRef,
		AmountRupees: dto.PaisaToRupees(intent.Amount),
		Currency:     intent.Currency,
	})
}

// TopUpConfirm verifies a gateway confirmation and credits the wallet.
func (h *WalletHandler) TopUpConfirm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TopUpConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := dto.RupeesToPaisa(req.AmountRupees)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
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

	result, err := h.ledgerSvc.ConfirmTopUp(r.Context(), usecase.ConfirmTopUpInput{
		Handle:            principal.Handle,
		GatewayRef:        req.GatewayRef,
		ConfirmationToken: req.ConfirmationToken,
		Amount:            amount,
		IdempotencyKey:    key,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm top-up", err.Error())
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.TopUpResultResponse{
		EntryID:          result.EntryID,
		NewBalanceRupees: dto.PaisaToRupees(result.NewBalance),
		Replayed:         result.Replayed,
	})
}
