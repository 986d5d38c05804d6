package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecopay/ecoledger/internal/domain"
	"github.com/ecopay/ecoledger/internal/usecase"
	"github.com/ecopay/ecoledger/internal/usecase/mocks"
)

func newReconciliationFixture() (*usecase.ReconciliationService, *mocks.MockAccountRepository, *mocks.MockEntryRepository, *mocks.MockPointRepository) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	pointRepo := mocks.NewMockPointRepository()
	svc := usecase.NewReconciliationService(accountRepo, entryRepo, pointRepo, nil, zerolog.Nop())
	return svc, accountRepo, entryRepo, pointRepo
}

func TestReconciliationService_CleanLedger(t *testing.T) {
	svc, accountRepo, entryRepo, pointRepo := newReconciliationFixture()

	seedAccount(accountRepo, "acc-1", "alice@upi", 3_000)
	now := time.Now().UTC()
	entryRepo.Create(context.Background(), nil, &domain.LedgerEntry{
		ID: "e1", AccountID: "acc-1", Delta: 5_000, Reason: domain.ReasonPaymentTopup, CorrelationID: "topup:a", CreatedAt: now,
	})
	entryRepo.Create(context.Background(), nil, &domain.LedgerEntry{
		ID: "e2", AccountID: "acc-1", Delta: -2_000, Reason: domain.ReasonTransfer, CorrelationID: "txn:b", CreatedAt: now,
	})
	pointRepo.Seed(&domain.PointBalance{AccountID: "acc-1", LifetimePoints: 700, AvailablePoints: 200, ConvertedPoints: 500})

	report, err := svc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Consistent() {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if report.CheckedAccounts != 1 || report.CheckedPoints != 1 {
		t.Errorf("checked = %d/%d, want 1/1", report.CheckedAccounts, report.CheckedPoints)
	}
}

func TestReconciliationService_DetectsBalanceDrift(t *testing.T) {
	svc, accountRepo, entryRepo, _ := newReconciliationFixture()

	seedAccount(accountRepo, "acc-1", "alice@upi", 9_999)
	entryRepo.Create(context.Background(), nil, &domain.LedgerEntry{
		ID: "e1", AccountID: "acc-1", Delta: 5_000, Reason: domain.ReasonPaymentTopup, CorrelationID: "topup:a",
	})

	report, err := svc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.AccountMismatches) != 1 {
		t.Fatalf("expected 1 account mismatch, got %d", len(report.AccountMismatches))
	}
	m := report.AccountMismatches[0]
	if m.AccountID != "acc-1" || m.Balance != 9_999 || m.JournalSum != 5_000 {
		t.Errorf("mismatch = %+v", m)
	}
}

func TestReconciliationService_DetectsPointLeak(t *testing.T) {
	svc, _, _, pointRepo := newReconciliationFixture()

	pointRepo.Seed(&domain.PointBalance{AccountID: "acc-1", LifetimePoints: 1_000, AvailablePoints: 400, ConvertedPoints: 500})

	report, err := svc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.PointMismatches) != 1 {
		t.Fatalf("expected 1 point mismatch, got %d", len(report.PointMismatches))
	}
	if report.PointMismatches[0].AccountID != "acc-1" {
		t.Errorf("mismatch = %+v", report.PointMismatches[0])
	}
}
