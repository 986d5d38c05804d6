package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
)

// SettlementService runs the order lifecycle: reserve inventory, await the
// payment verdict, then commit the trade against both the ledger and the
// marketplace in one transaction, or roll the reservation back. Inventory
// and money never partially apply.
type SettlementService struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	pointRepo   PointRepository
	listingRepo ListingRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	gateway     PaymentGateway
	idGen       IDGenerator
	metrics     *metrics.Metrics

	gatewayTimeout  time.Duration
	reservationTTL  time.Duration
	pointsPerCredit int64
}

// SettlementServiceConfig holds dependencies for SettlementService.
type SettlementServiceConfig struct {
	TxManager       TransactionManager
	AccountRepo     AccountRepository
	EntryRepo       EntryRepository
	PointRepo       PointRepository
	ListingRepo     ListingRepository
	OrderRepo       OrderRepository
	OutboxRepo      OutboxRepository
	Gateway         PaymentGateway
	IDGen           IDGenerator
	Metrics         *metrics.Metrics
	GatewayTimeout  time.Duration
	ReservationTTL  time.Duration
	PointsPerCredit int64
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(cfg SettlementServiceConfig) *SettlementService {
	if cfg.GatewayTimeout == 0 {
		cfg.GatewayTimeout = 15 * time.Second
	}
	if cfg.ReservationTTL == 0 {
		cfg.ReservationTTL = 15 * time.Minute
	}

	return &SettlementService{
		txManager:       cfg.TxManager,
		accountRepo:     cfg.AccountRepo,
		entryRepo:       cfg.EntryRepo,
		pointRepo:       cfg.PointRepo,
		listingRepo:     cfg.ListingRepo,
		orderRepo:       cfg.OrderRepo,
		outboxRepo:      cfg.OutboxRepo,
		gateway:         cfg.Gateway,
		idGen:           cfg.IDGen,
		metrics:         cfg.Metrics,
		gatewayTimeout:  cfg.GatewayTimeout,
		reservationTTL:  cfg.ReservationTTL,
		pointsPerCredit: cfg.PointsPerCredit,
	}
}

// CreateOrderInput represents a buyer's claim on a listing.
type CreateOrderInput struct {
	BuyerAccountID string
	ListingID      string
	CreditAmount   int64
	IdempotencyKey string
}

// CreateOrder reserves inventory and opens an order awaiting payment.
// Racing reservations are decided first-committed-wins: the loser re-reads
// the listing and fails with ErrInsufficientInventory if its full request
// no longer fits. Partial fills are never produced. A repeated idempotency
// key returns the previously created order.
func (s *SettlementService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.CreditAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if prior, err := s.orderRepo.GetByIdempotencyKey(ctx, input.BuyerAccountID, input.IdempotencyKey); err == nil {
		return prior, nil
	}

	buyer, err := s.accountRepo.GetByID(ctx, input.BuyerAccountID)
	if err != nil {
		return nil, err
	}
	if buyer.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		listing, err := s.listingRepo.GetByID(ctx, input.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.SellerAccountID == buyer.ID {
			return nil, domain.ErrSameAccount
		}
		if err := listing.ValidateReserve(input.CreditAmount); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		order := &domain.Order{
			ID:             s.idGen.Generate(),
			ListingID:      listing.ID,
			BuyerAccountID: buyer.ID,
			CreditAmount:   input.CreditAmount,
			TotalPrice:     input.CreditAmount * listing.PricePerCredit,
			Status:         domain.OrderStatusAwaitingConfirmation,
			IdempotencyKey: input.IdempotencyKey,
			CreatedAt:      now,
		}

		err = s.commitReservation(ctx, listing, order, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.OrdersReserved.Inc()
		}

		return order, nil
	}

	return nil, domain.ErrContention
}

func (s *SettlementService) commitReservation(ctx context.Context, listing *domain.Listing, order *domain.Order, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	remaining := listing.CreditAmount - order.CreditAmount
	status := listing.Status
	if remaining == 0 {
		status = domain.ListingStatusSoldOut
	}

	if err := s.listingRepo.UpdateInventory(txCtx, tx, listing.ID, remaining, status, listing.Version, now); err != nil {
		return err
	}
	if err := s.orderRepo.Create(txCtx, tx, order); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// ConfirmPayment settles an order after the gateway vouches for the
// client-submitted confirmation. The ledger transfer and the order status
// change commit in one transaction; every failure path after the
// reservation releases the held inventory before the error is returned.
// Confirming an already settled order returns it unchanged.
func (s *SettlementService) ConfirmPayment(ctx context.Context, orderID, confirmationToken string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusSettled {
		return order, nil
	}
	if order.Terminal() {
		return nil, domain.ErrInvalidTransition
	}

	listing, err := s.listingRepo.GetByID(ctx, order.ListingID)
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	verdict, err := s.gateway.VerifyConfirmation(gwCtx, order.ID, confirmationToken)
	if err != nil {
		// Gateway failure and timeout are symmetric: the payment did not
		// happen, so the reservation is rolled back.
		if relErr := s.release(ctx, order, domain.OrderStatusFailed); relErr != nil {
			return nil, relErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorFailure, err)
	}
	if !verdict.Authentic || verdict.ConfirmedAmount != order.TotalPrice {
		if relErr := s.release(ctx, order, domain.OrderStatusFailed); relErr != nil {
			return nil, relErr
		}
		return nil, domain.ErrPaymentRejected
	}

	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		buyer, err := s.accountRepo.GetByID(ctx, order.BuyerAccountID)
		if err != nil {
			return nil, err
		}
		seller, err := s.accountRepo.GetByID(ctx, listing.SellerAccountID)
		if err != nil {
			return nil, err
		}

		// Funds can have drained between reservation and confirmation.
		if err := buyer.ValidateDebit(order.TotalPrice); err != nil {
			if relErr := s.release(ctx, order, domain.OrderStatusFailed); relErr != nil {
				return nil, relErr
			}
			return nil, err
		}
		if err := seller.ValidateCredit(); err != nil {
			if relErr := s.release(ctx, order, domain.OrderStatusFailed); relErr != nil {
				return nil, relErr
			}
			return nil, err
		}

		now := time.Now().UTC()

		err = s.commitSettlement(ctx, order, buyer, seller, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		order.Status = domain.OrderStatusSettled
		order.SettledAt = &now

		if s.metrics != nil {
			s.metrics.OrdersSettled.Inc()
			s.metrics.SettlementAmount.Observe(float64(order.TotalPrice))
		}

		return order, nil
	}

	// The reservation stays live on contention: the order is still
	// awaiting confirmation and the client may retry this idempotent call.
	return nil, domain.ErrContention
}

func (s *SettlementService) commitSettlement(ctx context.Context, order *domain.Order, buyer, seller *domain.Account, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if _, _, err := applyPairedEntries(txCtx, tx, pairedEntriesInput{
		AccountRepo:   s.accountRepo,
		EntryRepo:     s.entryRepo,
		IDGen:         s.idGen,
		From:          buyer,
		To:            seller,
		Amount:        order.TotalPrice,
		Reason:        domain.ReasonPurchase,
		CorrelationID: "settle:" + order.ID,
		Now:           now,
	}); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusAwaitingConfirmation, domain.OrderStatusSettled, &now); err != nil {
		return err
	}

	// Eco-points reward the buyer for offsetting carbon.
	if s.pointsPerCredit > 0 {
		if err := s.pointRepo.Award(txCtx, tx, buyer.ID, order.CreditAmount*s.pointsPerCredit, now); err != nil {
			return err
		}
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   order.ID,
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypeOrderSettled,
			Payload: map[string]any{
				"order_id":      order.ID,
				"listing_id":    order.ListingID,
				"buyer_id":      buyer.ID,
				"seller_id":     seller.ID,
				"credit_amount": order.CreditAmount,
				"total_price":   order.TotalPrice,
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}

// GetOrder retrieves an order by ID.
func (s *SettlementService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListOrdersByBuyer pages a buyer's orders, newest first.
func (s *SettlementService) ListOrdersByBuyer(ctx context.Context, buyerAccountID string, limit, offset int) ([]*domain.Order, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	return s.orderRepo.ListByBuyer(ctx, buyerAccountID, limit, offset)
}

// ExpireStale releases reservations that sat awaiting confirmation past
// the configured TTL, preventing inventory starvation from abandoned
// checkouts. It returns the number of orders released.
func (s *SettlementService) ExpireStale(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	cutoff := time.Now().UTC().Add(-s.reservationTTL)
	stale, err := s.orderRepo.ListStale(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, order := range stale {
		if err := s.release(ctx, order, domain.OrderStatusExpired); err != nil {
			// Another worker may have settled or released it meanwhile.
			if errors.Is(err, domain.ErrInvalidTransition) {
				continue
			}
			return released, err
		}
		released++
	}

	if s.metrics != nil && released > 0 {
		s.metrics.OrdersExpired.Add(float64(released))
	}

	return released, nil
}

// release returns the reserved credits to the listing and finishes the
// order as Failed or Expired, in one transaction.
func (s *SettlementService) release(ctx context.Context, order *domain.Order, to domain.OrderStatus) error {
	if to != domain.OrderStatusFailed && to != domain.OrderStatusExpired {
		return domain.ErrInvalidTransition
	}

	for attempt := 0; attempt < MaxConflictRetries; attempt++ {
		listing, err := s.listingRepo.GetByID(ctx, order.ListingID)
		if err != nil {
			return err
		}

		// Restoring inventory reopens a sold-out listing; a suspended or
		// rejected listing keeps its status and only regains the credits.
		status := listing.Status
		if status == domain.ListingStatusSoldOut {
			status = domain.ListingStatusAvailable
		}

		now := time.Now().UTC()

		err = s.commitRelease(ctx, order, listing, listing.CreditAmount+order.CreditAmount, status, to, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}

		order.Status = to

		if s.metrics != nil {
			s.metrics.OrdersReleased.Inc()
		}

		return nil
	}

	return domain.ErrContention
}

func (s *SettlementService) commitRelease(ctx context.Context, order *domain.Order, listing *domain.Listing, credits int64, listingStatus domain.ListingStatus, to domain.OrderStatus, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusAwaitingConfirmation, to, nil); err != nil {
		return err
	}
	if err := s.listingRepo.UpdateInventory(txCtx, tx, listing.ID, credits, listingStatus, listing.Version, now); err != nil {
		return err
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   order.ID,
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypeOrderReleased,
			Payload: map[string]any{
				"order_id":      order.ID,
				"listing_id":    order.ListingID,
				"credit_amount": order.CreditAmount,
				"final_status":  string(to),
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(txCtx)
}
