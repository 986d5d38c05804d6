package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
)

// ConversionService exchanges accrued eco-points for on-chain tokens.
// Points are debited up front in the same transaction that records the
// request, so the balance can never be spent twice; a failed or timed-out
// mint restores them in full.
type ConversionService struct {
	txManager      TransactionManager
	conversionRepo ConversionRepository
	accountRepo    AccountRepository
	pointRepo      PointRepository
	outboxRepo     OutboxRepository
	minter         ChainMinter
	idGen          IDGenerator
	metrics        *metrics.Metrics

	threshold      int64
	pointsPerToken decimal.Decimal
	mintTimeout    time.Duration
}

// ConversionServiceConfig holds dependencies for ConversionService.
type ConversionServiceConfig struct {
	TxManager      TransactionManager
	ConversionRepo ConversionRepository
	AccountRepo    AccountRepository
	PointRepo      PointRepository
	OutboxRepo     OutboxRepository
	Minter         ChainMinter
	IDGen          IDGenerator
	Metrics        *metrics.Metrics
	Threshold      int64
	PointsPerToken decimal.Decimal
	MintTimeout    time.Duration
}

// NewConversionService creates a new ConversionService.
func NewConversionService(cfg ConversionServiceConfig) *ConversionService {
	if cfg.Threshold == 0 {
		cfg.Threshold = 500
	}
	if cfg.PointsPerToken.IsZero() {
		cfg.PointsPerToken = decimal.NewFromInt(10)
	}
	if cfg.MintTimeout == 0 {
		cfg.MintTimeout = 30 * time.Second
	}

	return &ConversionService{
		txManager:      cfg.TxManager,
		conversionRepo: cfg.ConversionRepo,
		accountRepo:    cfg.AccountRepo,
		pointRepo:      cfg.PointRepo,
		outboxRepo:     cfg.OutboxRepo,
		minter:         cfg.Minter,
		idGen:          cfg.IDGen,
		metrics:        cfg.Metrics,
		threshold:      cfg.Threshold,
		pointsPerToken: cfg.PointsPerToken,
		mintTimeout:    cfg.MintTimeout,
	}
}

// Convert burns the account's full available point balance for tokens at
// the configured rate. The account must not be frozen, the balance must
// meet the minimum threshold and only one conversion per account may be
// in flight. A repeated
// idempotency key returns the existing request regardless of its state.
func (s *ConversionService) Convert(ctx context.Context, accountID, idempotencyKey string) (*domain.ConversionRequest, error) {
	if prior, err := s.conversionRepo.GetByIdempotencyKey(ctx, accountID, idempotencyKey); err == nil {
		return prior, nil
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Frozen {
		return nil, domain.ErrAccountFrozen
	}

	inFlight, err := s.conversionRepo.HasMinting(ctx, nil, accountID)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, domain.ErrConversionInProgress
	}

	balance, err := s.pointRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance.AvailablePoints < s.threshold {
		return nil, fmt.Errorf("%w: have %d, need %d", domain.ErrBelowThreshold, balance.AvailablePoints, s.threshold)
	}

	points := balance.AvailablePoints
	now := time.Now().UTC()

	req := &domain.ConversionRequest{
		ID:             s.idGen.Generate(),
		AccountID:      accountID,
		PointsAmount:   points,
		TokenAmount:    domain.TokensForPoints(points, s.pointsPerToken),
		Status:         domain.ConversionStatusRequested,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.commitRequest(ctx, req, points, now); err != nil {
		return nil, err
	}

	if err := s.conversionRepo.UpdateStatus(ctx, nil, req.ID, domain.ConversionStatusMinting, nil, time.Now().UTC()); err != nil {
		return nil, err
	}
	req.Status = domain.ConversionStatusMinting

	mintCtx, cancel := context.WithTimeout(ctx, s.mintTimeout)
	defer cancel()

	result, mintErr := s.minter.Mint(mintCtx, accountID, req.TokenAmount, req.ID)
	if mintErr != nil {
		if err := s.finishFailed(ctx, req); err != nil {
			return nil, err
		}
		return req, fmt.Errorf("%w: %v", domain.ErrCollaboratorFailure, mintErr)
	}

	if err := s.finishConfirmed(ctx, req, result.TxHash); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ConversionsConfirmed.Inc()
		s.metrics.ConversionPoints.Observe(float64(points))
	}

	return req, nil
}

// commitRequest records the request and debits the points atomically.
func (s *ConversionService) commitRequest(ctx context.Context, req *domain.ConversionRequest, points int64, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.conversionRepo.Create(txCtx, tx, req); err != nil {
		return err
	}
	if err := s.pointRepo.Convert(txCtx, tx, req.AccountID, points, now); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// finishConfirmed marks the request confirmed with its chain receipt and
// emits the confirmation event.
func (s *ConversionService) finishConfirmed(ctx context.Context, req *domain.ConversionRequest, txHash string) error {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.conversionRepo.UpdateStatus(txCtx, tx, req.ID, domain.ConversionStatusConfirmed, &txHash, now); err != nil {
		return err
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   req.ID,
			AggregateType: domain.AggregateTypeConversion,
			EventType:     domain.EventTypeConversionConfirmed,
			Payload: map[string]any{
				"conversion_id": req.ID,
				"account_id":    req.AccountID,
				"points":        req.PointsAmount,
				"tokens":        req.TokenAmount.String(),
				"tx_hash":       txHash,
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	req.Status = domain.ConversionStatusConfirmed
	req.ChainTxHash = &txHash
	req.UpdatedAt = now
	return nil
}

// finishFailed restores the debited points and marks the request failed,
// atomically. A mint timeout lands here too: the minter is required to
// treat an unconfirmed request as void, so restoring is safe.
func (s *ConversionService) finishFailed(ctx context.Context, req *domain.ConversionRequest) error {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.conversionRepo.UpdateStatus(txCtx, tx, req.ID, domain.ConversionStatusFailed, nil, now); err != nil {
		return err
	}
	if err := s.pointRepo.Convert(txCtx, tx, req.AccountID, -req.PointsAmount, now); err != nil {
		return err
	}

	if s.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			AggregateID:   req.ID,
			AggregateType: domain.AggregateTypeConversion,
			EventType:     domain.EventTypeConversionFailed,
			Payload: map[string]any{
				"conversion_id":   req.ID,
				"account_id":      req.AccountID,
				"points_restored": req.PointsAmount,
			},
			CreatedAt: now,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ConversionsFailed.Inc()
	}

	req.Status = domain.ConversionStatusFailed
	req.UpdatedAt = now
	return nil
}

// GetConversion retrieves a conversion request by ID, scoped to the
// requesting account.
func (s *ConversionService) GetConversion(ctx context.Context, accountID, id string) (*domain.ConversionRequest, error) {
	req, err := s.conversionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AccountID != accountID {
		return nil, domain.ErrConversionNotFound
	}
	return req, nil
}

// ListConversions pages an account's conversion history, newest first.
func (s *ConversionService) ListConversions(ctx context.Context, accountID string, limit, offset int) ([]*domain.ConversionRequest, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	return s.conversionRepo.ListByAccount(ctx, accountID, limit, offset)
}
