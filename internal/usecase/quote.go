package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
)

// Quote is the USD valuation of an amount at the current price.
type Quote struct {
	Amount        decimal.Decimal
	Price         decimal.Decimal
	USDValue      decimal.Decimal
	MinimumUSD    decimal.Decimal
	MinimumAmount decimal.Decimal
	MeetsMinimum  bool
}

// Quote values amount at the latest price. The price may come from the
// quote cache, so a quote is informational: Fund always reads the oracle.
func (uc *FundingUseCase) Quote(ctx context.Context, amount decimal.Decimal) (*Quote, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	ledger, err := uc.ledgerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	price, err := uc.cachedPrice(ctx)
	if err != nil {
		return nil, err
	}

	usd := domain.ConvertToUSD(amount, price)

	return &Quote{
		Amount:        amount,
		Price:         price,
		USDValue:      usd,
		MinimumUSD:    ledger.MinimumUSD,
		MinimumAmount: ledger.MinimumContribution(price),
		MeetsMinimum:  ledger.ValidateContribution(amount, price) == nil,
	}, nil
}

func (uc *FundingUseCase) cachedPrice(ctx context.Context) (decimal.Decimal, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, quotePriceCacheKey)
		if err == nil {
			if price, err := decimal.NewFromString(cached); err == nil && price.IsPositive() {
				return price, nil
			}
		}
	}

	price, err := uc.readOracle(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, quotePriceCacheKey, price.String(), uc.quoteTTL); err != nil {
			uc.logger.Debug().Err(err).Msg("failed to cache quote price")
		}
	}

	return price, nil
}
