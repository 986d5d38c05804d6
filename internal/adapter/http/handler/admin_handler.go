package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecopay/ecoledger/internal/adapter/http/dto"
	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// AdminHandler handles the moderation and operations surface.
type AdminHandler struct {
	marketplaceSvc    *usecase.MarketplaceService
	accountSvc        *usecase.AccountService
	settlementSvc     *usecase.SettlementService
	reconciliationSvc *usecase.ReconciliationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	marketplaceSvc *usecase.MarketplaceService,
	accountSvc *usecase.AccountService,
	settlementSvc *usecase.SettlementService,
	reconciliationSvc *usecase.ReconciliationService,
) *AdminHandler {
	return &AdminHandler{
		marketplaceSvc:    marketplaceSvc,
		accountSvc:        accountSvc,
		settlementSvc:     settlementSvc,
		reconciliationSvc: reconciliationSvc,
	}
}

// PendingListings lists listings awaiting moderation.
func (h *AdminHandler) PendingListings(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	listings, err := h.marketplaceSvc.ListByStatus(r.Context(), domain.ListingStatusPendingApproval, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list pending listings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingsFromDomain(listings))
}

// ApproveListing publishes a pending listing.
func (h *AdminHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	h.moderateListing(w, r, domain.ModerationApprove)
}

// RejectListing declines a pending listing.
func (h *AdminHandler) RejectListing(w http.ResponseWriter, r *http.Request) {
	h.moderateListing(w, r, domain.ModerationReject)
}

func (h *AdminHandler) moderateListing(w http.ResponseWriter, r *http.Request, decision domain.ModerationDecision) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing ID", "")
		return
	}

	listing, err := h.marketplaceSvc.Moderate(r.Context(), id, decision)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to moderate listing", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}

// SuspendListing pulls a listing from the marketplace.
func (h *AdminHandler) SuspendListing(w http.ResponseWriter, r *http.Request) {
	h.transitionListing(w, r, h.marketplaceSvc.Suspend)
}

// ReactivateListing returns a suspended listing to the marketplace.
func (h *AdminHandler) ReactivateListing(w http.ResponseWriter, r *http.Request) {
	h.transitionListing(w, r, h.marketplaceSvc.Reactivate)
}

func (h *AdminHandler) transitionListing(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*domain.Listing, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing ID", "")
		return
	}

	listing, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update listing", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}

// FreezeAccount blocks debits and credits on an account.
func (h *AdminHandler) FreezeAccount(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		writeError(w, http.StatusBadRequest, "missing account handle", "")
		return
	}

	account, err := h.accountSvc.Freeze(r.Context(), handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to freeze account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(account))
}

// SweepExpiredOrders releases reservations whose payment never arrived.
func (h *AdminHandler) SweepExpiredOrders(w http.ResponseWriter, r *http.Request) {
	batchSize := parseIntQuery(r, "batch_size", 100)

	expired, err := h.settlementSvc.ExpireStale(r.Context(), batchSize)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to sweep expired orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"expired": expired})
}

// Consistency runs a full ledger consistency sweep.
func (h *AdminHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationSvc.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyReportFromUseCase(report))
}
