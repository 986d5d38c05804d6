package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecopay/ecoledger/internal/adapter/http/dto"
	"github.com/ecopay/ecoledger/internal/adapter/http/middleware"
	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
)

const (
	catalogueCacheKey = "listings:available"
	catalogueCacheTTL = 30 * time.Second
)

// ListingHandler handles marketplace listing HTTP requests.
type ListingHandler struct {
	marketplaceSvc *usecase.MarketplaceService
	accountSvc     *usecase.AccountService
	cache          usecase.Cache
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(marketplaceSvc *usecase.MarketplaceService, accountSvc *usecase.AccountService, cache usecase.Cache) *ListingHandler {
	return &ListingHandler{
		marketplaceSvc: marketplaceSvc,
		accountSvc:     accountSvc,
		cache:          cache,
	}
}

// Create opens a listing awaiting moderation.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	price, err := dto.RupeesToPaisa(req.PricePerCreditRupees)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price", err.Error())
		return
	}

	seller, err := h.accountSvc.GetOrCreateByHandle(r.Context(), principal.Handle)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve seller", err.Error())
		return
	}

	listing, err := h.marketplaceSvc.CreateListing(r.Context(), usecase.CreateListingInput{
		SellerAccountID: seller.ID,
		CreditAmount:    req.CreditAmount,
		PricePerCredit:  price,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create listing", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListingFromDomain(listing))
}

// Get retrieves a listing by ID.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing ID", "")
		return
	}

	listing, err := h.marketplaceSvc.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get listing", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}

// ListAvailable lists the public catalogue of available listings. The
// first page is served from cache when possible.
func (h *ListingHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	cacheable := limit == 20 && offset == 0
	if cacheable {
		if cached, err := h.cache.Get(r.Context(), catalogueCacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			// Redis trouble should not take the catalogue down.
			cacheable = false
		}
	}

	listings, err := h.marketplaceSvc.ListByStatus(r.Context(), domain.ListingStatusAvailable, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list listings", err.Error())
		return
	}

	body, err := json.Marshal(dto.ListingsFromDomain(listings))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode listings", err.Error())
		return
	}

	if cacheable {
		h.cache.Set(r.Context(), catalogueCacheKey, string(body), catalogueCacheTTL)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
