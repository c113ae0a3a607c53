package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution is one accepted fund call.
type Contribution struct {
	CreatedAt time.Time
	ID        string
	Funder    Address
	Amount    decimal.Decimal
	Price     decimal.Decimal
	USDValue  decimal.Decimal
}

// Funder is a position in the funders list.
type Funder struct {
	Index   int64
	Address Address
}
