package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal records a payout of the whole ledger balance to the owner.
type Withdrawal struct {
	CreatedAt      time.Time
	ID             string
	Owner          Address
	Amount         decimal.Decimal
	FundersCleared int
}
