package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
)

// MarketplaceService owns listing lifecycle: creation, moderation,
// suspension and the public catalogue. Inventory movement (reserve and
// release) belongs to the settlement engine.
type MarketplaceService struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	listingRepo ListingRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewMarketplaceService creates a new MarketplaceService.
func NewMarketplaceService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	listingRepo ListingRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *MarketplaceService {
	return &MarketplaceService{
		txManager:   txManager,
		accountRepo: accountRepo,
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateListingInput represents a seller's offer.
type CreateListingInput struct {
	SellerAccountID string
	CreditAmount    int64
	PricePerCredit  int64
}

// CreateListing creates a listing awaiting moderation.
func (s *MarketplaceService) CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if input.CreditAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(input.PricePerCredit); err != nil {
		return nil, err
	}

	seller, err := s.accountRepo.GetByID(ctx, input.SellerAccountID)
	if err != nil {
		return nil, err
	}
	if seller.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:              s.idGen.Generate(),
		SellerAccountID: seller.ID,
		CreditAmount:    input.CreditAmount,
		PricePerCredit:  input.PricePerCredit,
		Status:          domain.ListingStatusPendingApproval,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ListingsCreated.Inc()
	}

	return listing, nil
}

// GetListing retrieves a listing by ID.
func (s *MarketplaceService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

// ListByStatus pages listings in one status, newest first.
func (s *MarketplaceService) ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	return s.listingRepo.ListByStatus(ctx, status, limit, offset)
}

// Moderate applies an admin approve/reject verdict to a pending listing.
func (s *MarketplaceService) Moderate(ctx context.Context, listingID string, decision domain.ModerationDecision) (*domain.Listing, error) {
	target := domain.ListingStatusAvailable
	if decision == domain.ModerationReject {
		target = domain.ListingStatusRejected
	}
	return s.transition(ctx, listingID, target, domain.ListingStatusPendingApproval)
}

// Suspend is the admin emergency stop for an Available or SoldOut listing.
func (s *MarketplaceService) Suspend(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.transition(ctx, listingID, domain.ListingStatusSuspended,
		domain.ListingStatusAvailable, domain.ListingStatusSoldOut)
}

// Reactivate returns a suspended listing to sale.
func (s *MarketplaceService) Reactivate(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.transition(ctx, listingID, domain.ListingStatusAvailable, domain.ListingStatusSuspended)
}

// transition moves a listing to target, requiring the current status to be
// one of from. The write is version-conditioned and retried on conflict.
func (s *MarketplaceService) transition(ctx context.Context, listingID string, target domain.ListingStatus, from ...domain.ListingStatus) (*domain.Listing, error) {
	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		listing, err := s.listingRepo.GetByID(ctx, listingID)
		if err != nil {
			return nil, err
		}

		allowed := false
		for _, f := range from {
			if listing.Status == f {
				allowed = true
				break
			}
		}
		if !allowed || !listing.CanTransition(target) {
			return nil, domain.ErrInvalidTransition
		}

		now := time.Now().UTC()

		err = s.commitTransition(ctx, listing, target, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		listing.Status = target
		listing.Version++
		listing.UpdatedAt = now

		if s.metrics != nil {
			s.metrics.ListingsModerated.WithLabelValues(string(target)).Inc()
		}

		return listing, nil
	}

	return nil, domain.ErrContention
}

func (s *MarketplaceService) commitTransition(ctx context.Context, listing *domain.Listing, target domain.ListingStatus, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.listingRepo.UpdateStatus(txCtx, tx, listing.ID, target, listing.Version, now); err != nil {
		return err
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   listing.ID,
			AggregateType: domain.AggregateTypeListing,
			EventType:     domain.EventTypeListingModerated,
			Payload: map[string]any{
				"listing_id": listing.ID,
				"from":       string(listing.Status),
				"to":         string(target),
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}
