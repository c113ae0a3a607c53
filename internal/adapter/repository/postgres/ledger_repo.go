package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/infrastructure/postgres/generated"
	"github.com/iho/fundme/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository over the single
// row of the ledgers table.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Create inserts the ledger row.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(ptx).CreateLedger(ctx, generated.CreateLedgerParams{
		ID:         ledger.ID,
		Owner:      ledger.Owner.String(),
		PriceFeed:  ledger.PriceFeed,
		MinimumUsd: decimalToNumeric(ledger.MinimumUSD),
		Balance:    decimalToNumeric(ledger.Balance),
		Version:    ledger.Version,
		CreatedAt:  timeToPgTimestamptz(ledger.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(ledger.UpdatedAt),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrLedgerAlreadyInitialized
	}
	return err
}

// Get reads the ledger without locking.
func (r *LedgerRepository) Get(ctx context.Context) (*domain.Ledger, error) {
	row, err := r.queries.GetLedger(ctx)
	if err != nil {
		return nil, ledgerErr(err)
	}

	return rowToLedger(row), nil
}

// GetForUpdate reads the ledger and locks its row until tx ends.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Ledger, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(ptx).GetLedgerForUpdate(ctx)
	if err != nil {
		return nil, ledgerErr(err)
	}

	return rowToLedger(row), nil
}

// UpdateBalance sets the balance and bumps the version.
func (r *LedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, balance decimal.Decimal, updatedAt time.Time) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	n, err := r.queries.WithTx(ptx).UpdateLedgerBalance(ctx, generated.UpdateLedgerBalanceParams{
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

func ledgerErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrLedgerNotFound
	}
	return err
}

func rowToLedger(row generated.Ledger) *domain.Ledger {
	return &domain.Ledger{
		ID:         row.ID,
		Owner:      domain.Address(row.Owner),
		PriceFeed:  row.PriceFeed,
		MinimumUSD: numericToDecimal(row.MinimumUsd),
		Balance:    numericToDecimal(row.Balance),
		Version:    row.Version,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
