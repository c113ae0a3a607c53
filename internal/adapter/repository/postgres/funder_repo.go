package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/infrastructure/postgres/generated"
	"github.com/iho/fundme/internal/usecase"
)

// FunderRepository implements usecase.FunderRepository. Per-address totals
// live in funder_amounts and the ordered list in funders.
type FunderRepository struct {
	queries *generated.Queries
}

// NewFunderRepository creates a new FunderRepository.
func NewFunderRepository(db generated.DBTX) *FunderRepository {
	return &FunderRepository{queries: generated.New(db)}
}

// AddAmount increments the funder total, creating it on first contribution.
func (r *FunderRepository) AddAmount(ctx context.Context, tx usecase.Transaction, funder domain.Address, amount decimal.Decimal, updatedAt time.Time) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).AddFunderAmount(ctx, generated.AddFunderAmountParams{
		Address:   funder.String(),
		Amount:    decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// Append adds funder at the end of the list and returns its position.
// Callers hold the ledger row lock, which keeps positions dense.
func (r *FunderRepository) Append(ctx context.Context, tx usecase.Transaction, funder domain.Address, createdAt time.Time) (int64, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return 0, err
	}

	return r.queries.WithTx(ptx).AppendFunder(ctx, generated.AppendFunderParams{
		Address:   funder.String(),
		CreatedAt: timeToPgTimestamptz(createdAt),
	})
}

// ResetAll zeroes the totals of listed funders and empties the list.
func (r *FunderRepository) ResetAll(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) (int, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return 0, err
	}

	q := r.queries.WithTx(ptx)
	if err := q.ResetListedFunderAmounts(ctx, timeToPgTimestamptz(updatedAt)); err != nil {
		return 0, err
	}

	cleared, err := q.ClearFunders(ctx)
	if err != nil {
		return 0, err
	}

	return int(cleared), nil
}

// AmountFunded returns the funder total, zero when the address never funded.
func (r *FunderRepository) AmountFunded(ctx context.Context, funder domain.Address) (decimal.Decimal, error) {
	amount, err := r.queries.GetFunderAmount(ctx, funder.String())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return numericToDecimal(amount), nil
}

// GetByIndex returns the address at position index.
func (r *FunderRepository) GetByIndex(ctx context.Context, index int64) (domain.Address, error) {
	address, err := r.queries.GetFunderByPosition(ctx, index)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrFunderIndexOutOfRange
		}
		return "", err
	}

	return domain.Address(address), nil
}

// Count returns the list length.
func (r *FunderRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountFunders(ctx)
}

// List returns a page of the list in position order.
func (r *FunderRepository) List(ctx context.Context, limit, offset int) ([]domain.Funder, error) {
	rows, err := r.queries.ListFunders(ctx, generated.ListFundersParams{
		Limit:  clampInt32(limit),
		Offset: clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	funders := make([]domain.Funder, 0, len(rows))
	for _, row := range rows {
		funders = append(funders, domain.Funder{
			Index:   row.Position,
			Address: domain.Address(row.Address),
		})
	}

	return funders, nil
}

// TotalFunded sums every funder total.
func (r *FunderRepository) TotalFunded(ctx context.Context, tx usecase.Transaction) (decimal.Decimal, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return decimal.Zero, err
	}

	total, err := r.queries.WithTx(ptx).SumFunderAmounts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
