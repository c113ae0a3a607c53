package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
	"github.com/iho/fundme/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	dbErr := errors.New("db down")

	tests := []struct {
		name        string
		ledger      *domain.Ledger
		ledgerErr   error
		total       decimal.Decimal
		totalErr    error
		want        bool
		expectedErr error
	}{
		{
			name:   "empty ledger",
			ledger: &domain.Ledger{Balance: decimal.Zero},
			total:  decimal.Zero,
			want:   true,
		},
		{
			name:   "balance matches funders",
			ledger: &domain.Ledger{Balance: decimal.RequireFromString("0.35")},
			total:  decimal.RequireFromString("0.35"),
			want:   true,
		},
		{
			name:        "ledger missing",
			ledgerErr:   domain.ErrLedgerNotFound,
			expectedErr: domain.ErrLedgerNotFound,
		},
		{
			name:        "repo error surfaces",
			ledger:      &domain.Ledger{Balance: decimal.Zero},
			totalErr:    dbErr,
			expectedErr: dbErr,
		},
		{
			name:        "balance above funded total",
			ledger:      &domain.Ledger{Balance: decimal.NewFromInt(10)},
			total:       decimal.NewFromInt(9),
			expectedErr: usecase.ErrInconsistentLedger,
		},
		{
			name:        "negative balance",
			ledger:      &domain.Ledger{Balance: decimal.NewFromInt(-1)},
			total:       decimal.NewFromInt(-1),
			expectedErr: usecase.ErrInconsistentLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			txManager := mocks.NewMockTransactionManager(ctrl)
			tx := mocks.NewMockTransaction(ctrl)
			ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
			funderRepo := mocks.NewMockFunderRepository(ctrl)

			txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			ledgerRepo.EXPECT().GetForUpdate(gomock.Any(), tx).Return(tt.ledger, tt.ledgerErr)
			if tt.ledgerErr == nil {
				funderRepo.EXPECT().TotalFunded(gomock.Any(), tx).Return(tt.total, tt.totalErr)
			}

			uc := usecase.NewLedgerUseCase(txManager, ledgerRepo, funderRepo)
			report, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				if errors.Is(tt.expectedErr, usecase.ErrInconsistentLedger) {
					if report == nil || report.Consistent {
						t.Fatalf("expected inconsistent report, got %+v", report)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Consistent != tt.want {
				t.Errorf("Consistent = %v, want %v", report.Consistent, tt.want)
			}
			if !report.Balance.Equal(tt.ledger.Balance) {
				t.Errorf("Balance = %s, want %s", report.Balance, tt.ledger.Balance)
			}
		})
	}
}
