package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in minor units (cents for USD)
type Money struct {
	Amount   int64 // minor units, never negative
	Currency string
}

// NewMoney creates a Money value, rejecting negative amounts
func NewMoney(minorUnits int64, currency string) (Money, error) {
	if minorUnits < 0 {
		return Money{}, NewDomainError(ErrorCodeValidationAmountInvalid,
			fmt.Sprintf("amount must not be negative: %d", minorUnits))
	}
	if currency == "" {
		currency = "USD"
	}
	return Money{Amount: minorUnits, Currency: currency}, nil
}

// NewMoneyFromMajorString parses a major-unit amount such as "1.00" into
// minor units. Sub-cent precision and negative amounts are rejected.
func NewMoneyFromMajorString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, NewDomainError(ErrorCodeValidationAmountInvalid,
			fmt.Sprintf("malformed amount %q", amount))
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return Money{}, NewDomainError(ErrorCodeValidationAmountInvalid,
			fmt.Sprintf("amount %q has sub-cent precision", amount))
	}
	return NewMoney(minor.IntPart(), currency)
}

// Validate checks the amount invariant without constructing a new value
func (m Money) Validate() error {
	if m.Amount < 0 {
		return NewDomainError(ErrorCodeValidationAmountInvalid,
			fmt.Sprintf("amount must not be negative: %d", m.Amount))
	}
	return nil
}

// MinorString formats the amount as an integer minor-unit string, e.g. "100" for $1.00
func (m Money) MinorString() string {
	return decimal.NewFromInt(m.Amount).String()
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// CurrencyCode returns the currency, defaulting to USD
func (m Money) CurrencyCode() string {
	if m.Currency == "" {
		return "USD"
	}
	return m.Currency
}
