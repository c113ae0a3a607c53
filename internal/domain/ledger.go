package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinimumUSD is the contribution floor used when none is configured.
var DefaultMinimumUSD = decimal.NewFromInt(50)

// Ledger is the funding ledger: a single balance owned by one address,
// fed by contributions that clear a USD minimum.
type Ledger struct {
	ID         string
	Owner      Address
	PriceFeed  string
	MinimumUSD decimal.Decimal
	Balance    decimal.Decimal
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ConvertToUSD returns the USD value of amount native units at price USD per unit.
func ConvertToUSD(amount, price decimal.Decimal) decimal.Decimal {
	return amount.Mul(price)
}

// ValidateContribution checks amount against the ledger minimum at the given price.
func (l *Ledger) ValidateContribution(amount, price decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	if !price.IsPositive() {
		return ErrOracleUnavailable
	}

	if ConvertToUSD(amount, price).LessThan(l.MinimumUSD) {
		return ErrInsufficientContribution
	}

	return nil
}

// ValidateWithdrawal checks that caller may withdraw the balance.
func (l *Ledger) ValidateWithdrawal(caller Address) error {
	if !l.IsOwner(caller) {
		return ErrNotOwner
	}
	return nil
}

// IsOwner reports whether addr is the ledger owner.
func (l *Ledger) IsOwner(addr Address) bool {
	return l.Owner == addr.Normalize()
}

// ApplyContribution returns the balance after crediting amount.
func (l *Ledger) ApplyContribution(amount decimal.Decimal) decimal.Decimal {
	return l.Balance.Add(amount)
}

// MinimumContribution returns the smallest native amount accepted at price.
func (l *Ledger) MinimumContribution(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return l.MinimumUSD.DivRound(price, 18)
}
