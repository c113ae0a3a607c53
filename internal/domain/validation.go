package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxContributionAmount caps a single contribution, in native units.
const MaxContributionAmount = "1000000000"

// MaxAmountDecimals is the finest unit an amount may carry (one wei).
const MaxAmountDecimals = 18

var (
	ErrAmountTooLarge   = fmt.Errorf("%w: exceeds maximum allowed", ErrInvalidAmount)
	ErrAmountTooPrecise = fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxAmountDecimals)
)

// ValidateAmount validates a contribution amount. Zero is allowed here; it is
// rejected later by the USD minimum.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}

	if !amount.Equal(amount.Truncate(MaxAmountDecimals)) {
		return ErrAmountTooPrecise
	}

	maxAmount, _ := decimal.NewFromString(MaxContributionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxContributionAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
