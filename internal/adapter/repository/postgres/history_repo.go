package postgres

import (
	"context"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/infrastructure/postgres/generated"
	"github.com/iho/fundme/internal/usecase"
)

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	queries *generated.Queries
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(db generated.DBTX) *ContributionRepository {
	return &ContributionRepository{queries: generated.New(db)}
}

// Create records an accepted contribution.
func (r *ContributionRepository) Create(ctx context.Context, tx usecase.Transaction, contribution *domain.Contribution) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).CreateContribution(ctx, generated.CreateContributionParams{
		ID:        contribution.ID,
		Funder:    contribution.Funder.String(),
		Amount:    decimalToNumeric(contribution.Amount),
		Price:     decimalToNumeric(contribution.Price),
		UsdValue:  decimalToNumeric(contribution.USDValue),
		CreatedAt: timeToPgTimestamptz(contribution.CreatedAt),
	})
}

// List returns contributions newest first. An empty funder matches all.
func (r *ContributionRepository) List(ctx context.Context, funder domain.Address, limit, offset int) ([]*domain.Contribution, error) {
	rows, err := r.queries.ListContributions(ctx, generated.ListContributionsParams{
		Funder: funder.String(),
		Limit:  clampInt32(limit),
		Offset: clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	contributions := make([]*domain.Contribution, 0, len(rows))
	for _, row := range rows {
		contributions = append(contributions, &domain.Contribution{
			ID:        row.ID,
			Funder:    domain.Address(row.Funder),
			Amount:    numericToDecimal(row.Amount),
			Price:     numericToDecimal(row.Price),
			USDValue:  numericToDecimal(row.UsdValue),
			CreatedAt: row.CreatedAt.Time,
		})
	}

	return contributions, nil
}

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	queries *generated.Queries
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(db generated.DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{queries: generated.New(db)}
}

// Create records a payout.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, withdrawal *domain.Withdrawal) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).CreateWithdrawal(ctx, generated.CreateWithdrawalParams{
		ID:             withdrawal.ID,
		Owner:          withdrawal.Owner.String(),
		Amount:         decimalToNumeric(withdrawal.Amount),
		FundersCleared: clampInt32(withdrawal.FundersCleared),
		CreatedAt:      timeToPgTimestamptz(withdrawal.CreatedAt),
	})
}

// List returns payouts newest first.
func (r *WithdrawalRepository) List(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	rows, err := r.queries.ListWithdrawals(ctx, generated.ListWithdrawalsParams{
		Limit:  clampInt32(limit),
		Offset: clampInt32(offset),
	})
	if err != nil {
		return nil, err
	}

	withdrawals := make([]*domain.Withdrawal, 0, len(rows))
	for _, row := range rows {
		withdrawals = append(withdrawals, &domain.Withdrawal{
			ID:             row.ID,
			Owner:          domain.Address(row.Owner),
			Amount:         numericToDecimal(row.Amount),
			FundersCleared: int(row.FundersCleared),
			CreatedAt:      row.CreatedAt.Time,
		})
	}

	return withdrawals, nil
}
