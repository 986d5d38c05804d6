package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
	"github.com/ecopay/ecoledger/internal/usecase/mocks"
)

type conversionFixture struct {
	svc            *usecase.ConversionService
	conversionRepo *mocks.MockConversionRepository
	accountRepo    *mocks.MockAccountRepository
	pointRepo      *mocks.MockPointRepository
	outboxRepo     *mocks.MockOutboxRepository
	minter         *mocks.MockChainMinter
}

func newConversionFixture(t *testing.T) *conversionFixture {
	ctrl := gomock.NewController(t)

	f := &conversionFixture{
		conversionRepo: mocks.NewMockConversionRepository(),
		accountRepo:    mocks.NewMockAccountRepository(),
		pointRepo:      mocks.NewMockPointRepository(),
		outboxRepo:     mocks.NewMockOutboxRepository(),
		minter:         mocks.NewMockChainMinter(ctrl),
	}

	f.svc = usecase.NewConversionService(usecase.ConversionServiceConfig{
		TxManager:      mocks.NewMockTransactionManager(),
		ConversionRepo: f.conversionRepo,
		AccountRepo:    f.accountRepo,
		PointRepo:      f.pointRepo,
		OutboxRepo:     f.outboxRepo,
		Minter:         f.minter,
		IDGen:          mocks.NewMockIDGenerator(),
		Threshold:      500,
		PointsPerToken: decimal.NewFromInt(10),
		MintTimeout:    time.Second,
	})

	return f
}

func (f *conversionFixture) seedPoints(accountID string, available, converted int64) {
	seedAccount(f.accountRepo, accountID, accountID+"@upi", 0)
	f.pointRepo.Seed(&domain.PointBalance{
		AccountID:       accountID,
		LifetimePoints:  available + converted,
		AvailablePoints: available,
		ConvertedPoints: converted,
	})
}

func TestConversionService_ConvertConfirms(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)

	f.minter.EXPECT().
		Mint(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, tokens decimal.Decimal, _ string) (usecase.MintResult, error) {
			if !tokens.Equal(decimal.NewFromInt(100)) {
				t.Errorf("tokens = %s, want 100", tokens)
			}
			return usecase.MintResult{TxHash: "0xabc"}, nil
		})

	req, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != domain.ConversionStatusConfirmed {
		t.Errorf("status = %q, want confirmed", req.Status)
	}
	if req.PointsAmount != 1_000 {
		t.Errorf("points = %d, want 1000", req.PointsAmount)
	}
	if req.ChainTxHash == nil || *req.ChainTxHash != "0xabc" {
		t.Errorf("tx hash = %v, want 0xabc", req.ChainTxHash)
	}

	balance, _ := f.pointRepo.Get(context.Background(), "acc-1")
	if balance.AvailablePoints != 0 {
		t.Errorf("available = %d, want 0", balance.AvailablePoints)
	}
	if balance.ConvertedPoints != 1_000 {
		t.Errorf("converted = %d, want 1000", balance.ConvertedPoints)
	}
	if !balance.Consistent() {
		t.Errorf("point conservation violated: %+v", balance)
	}

	var sawConfirmed bool
	for _, e := range f.outboxRepo.Events() {
		if e.EventType == domain.EventTypeConversionConfirmed {
			sawConfirmed = true
		}
	}
	if !sawConfirmed {
		t.Errorf("expected a conversion.confirmed event")
	}
}

func TestConversionService_ConvertBelowThreshold(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 499, 0)

	_, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if !errors.Is(err, domain.ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold, got %v", err)
	}
}

func TestConversionService_ConvertFrozenAccount(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Handle: "acc-1@upi", Frozen: true})

	_, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if !errors.Is(err, domain.ErrAccountFrozen) {
		t.Fatalf("expected ErrAccountFrozen, got %v", err)
	}
	if reqs, _ := f.conversionRepo.ListByAccount(context.Background(), "acc-1", 10, 0); len(reqs) != 0 {
		t.Errorf("conversion requests = %d, want 0", len(reqs))
	}
}

func TestConversionService_ConvertExactThreshold(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 500, 0)

	f.minter.EXPECT().
		Mint(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
		Return(usecase.MintResult{TxHash: "0xdef"}, nil)

	req, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.TokenAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("tokens = %s, want 50", req.TokenAmount)
	}
}

func TestConversionService_ConvertRejectsConcurrent(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)
	f.conversionRepo.Seed(&domain.ConversionRequest{
		ID:        "conv-live",
		AccountID: "acc-1",
		Status:    domain.ConversionStatusMinting,
	})

	_, err := f.svc.Convert(context.Background(), "acc-1", "conv-2")
	if !errors.Is(err, domain.ErrConversionInProgress) {
		t.Fatalf("expected ErrConversionInProgress, got %v", err)
	}
}

func TestConversionService_ConvertRestoresPointsOnMintFailure(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)

	f.minter.EXPECT().
		Mint(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
		Return(usecase.MintResult{}, errors.New("chain unavailable"))

	req, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if !errors.Is(err, domain.ErrCollaboratorFailure) {
		t.Fatalf("expected ErrCollaboratorFailure, got %v", err)
	}
	if req.Status != domain.ConversionStatusFailed {
		t.Errorf("status = %q, want failed", req.Status)
	}

	balance, _ := f.pointRepo.Get(context.Background(), "acc-1")
	if balance.AvailablePoints != 1_000 {
		t.Errorf("available = %d, want full restore of 1000", balance.AvailablePoints)
	}
	if balance.ConvertedPoints != 0 {
		t.Errorf("converted = %d, want 0", balance.ConvertedPoints)
	}

	var sawFailed bool
	for _, e := range f.outboxRepo.Events() {
		if e.EventType == domain.EventTypeConversionFailed {
			sawFailed = true
		}
	}
	if !sawFailed {
		t.Errorf("expected a conversion.failed event")
	}
}

func TestConversionService_ConvertMintTimeout(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)

	f.minter.EXPECT().
		Mint(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ decimal.Decimal, _ string) (usecase.MintResult, error) {
			<-ctx.Done()
			return usecase.MintResult{}, ctx.Err()
		})

	req, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if !errors.Is(err, domain.ErrCollaboratorFailure) {
		t.Fatalf("expected ErrCollaboratorFailure, got %v", err)
	}
	if req.Status != domain.ConversionStatusFailed {
		t.Errorf("status = %q, want failed", req.Status)
	}

	balance, _ := f.pointRepo.Get(context.Background(), "acc-1")
	if balance.AvailablePoints != 1_000 {
		t.Errorf("available = %d, want 1000 after timeout restore", balance.AvailablePoints)
	}
}

func TestConversionService_ConvertIdempotentReplay(t *testing.T) {
	f := newConversionFixture(t)
	f.seedPoints("acc-1", 1_000, 0)

	f.minter.EXPECT().
		Mint(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
		Return(usecase.MintResult{TxHash: "0xabc"}, nil)

	first, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}

	// Replay returns the stored request and never reaches the minter.
	second, err := f.svc.Convert(context.Background(), "acc-1", "conv-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replay id = %q, want %q", second.ID, first.ID)
	}
}

func TestConversionService_GetConversionScopedToAccount(t *testing.T) {
	f := newConversionFixture(t)
	f.conversionRepo.Seed(&domain.ConversionRequest{
		ID:        "conv-1",
		AccountID: "acc-1",
		Status:    domain.ConversionStatusConfirmed,
	})

	if _, err := f.svc.GetConversion(context.Background(), "acc-1", "conv-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := f.svc.GetConversion(context.Background(), "acc-2", "conv-1")
	if !errors.Is(err, domain.ErrConversionNotFound) {
		t.Fatalf("expected ErrConversionNotFound for foreign account, got %v", err)
	}
}
