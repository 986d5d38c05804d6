package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
)

func TestConversionRepositoryCreateMapsInFlightViolation(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO conversion_requests").
		WithArgs(conversionInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: inFlightIndex})

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewConversionRepository(nil)
	err = repo.Create(context.Background(), tx, newConversionRow("conv-1", "acc-1"))
	if !errors.Is(err, domain.ErrConversionInProgress) {
		t.Fatalf("expected ErrConversionInProgress, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestConversionRepositoryCreatePassesOtherViolations(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	pgErr := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "idx_conversions_account_idempotency"}
	mockPool.ExpectExec("INSERT INTO conversion_requests").WithArgs(conversionInsertArgs()...).WillReturnError(pgErr)

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewConversionRepository(nil)
	err = repo.Create(context.Background(), tx, newConversionRow("conv-1", "acc-1"))
	if errors.Is(err, domain.ErrConversionInProgress) {
		t.Fatalf("idempotency violation must not map to ErrConversionInProgress")
	}
	if !errors.Is(err, pgErr) {
		t.Fatalf("expected the raw pg error, got %v", err)
	}
}

func conversionInsertArgs() []interface{} {
	args := make([]interface{}, 9)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newConversionRow(id, accountID string) *domain.ConversionRequest {
	now := time.Now().UTC()
	return &domain.ConversionRequest{
		ID:             id,
		AccountID:      accountID,
		PointsAmount:   500,
		TokenAmount:    decimal.NewFromInt(50),
		Status:         domain.ConversionStatusRequested,
		IdempotencyKey: "conv-key",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
