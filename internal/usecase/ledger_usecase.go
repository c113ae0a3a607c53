package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when the ledger balance does not match funder records.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balance does not equal funded total")
)

// LedgerUseCase handles ledger-wide checks.
type LedgerUseCase struct {
	txManager  TransactionManager
	ledgerRepo LedgerRepository
	funderRepo FunderRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(txManager TransactionManager, ledgerRepo LedgerRepository, funderRepo FunderRepository) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		ledgerRepo: ledgerRepo,
		funderRepo: funderRepo,
	}
}

// ConsistencyReport is the outcome of a consistency check.
type ConsistencyReport struct {
	Balance     decimal.Decimal
	TotalFunded decimal.Decimal
	Consistent  bool
	CheckedAt   time.Time
}

// CheckConsistency verifies that the ledger balance equals the sum of all
// funder records. The report is returned even when the check fails. Both
// values are read under the ledger lock, so no contribution can land between
// them.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ledger, err := uc.ledgerRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	total, err := uc.funderRepo.TotalFunded(ctx, tx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Balance:     ledger.Balance,
		TotalFunded: total,
		Consistent:  ledger.Balance.Equal(total) && !ledger.Balance.IsNegative(),
		CheckedAt:   time.Now().UTC(),
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
