package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// FundRequest represents a contribution request. Amount is a decimal string
// in native units.
type FundRequest struct {
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input. A missing amount is a call
// with no value and is sent on as zero.
func (r *FundRequest) ToUseCaseInput(caller string) (usecase.FundInput, error) {
	amount := decimal.Zero
	if strings.TrimSpace(r.Amount) != "" {
		var err error
		if amount, err = ParseAmount(r.Amount); err != nil {
			return usecase.FundInput{}, err
		}
	}

	return usecase.FundInput{
		Caller: caller,
		Amount: amount,
	}, nil
}

// ParseAmount parses a required decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, s)
	}

	return amount, nil
}
