package domain

import (
	"fmt"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every amount carries.
const AmountScale = 2

var (
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	ErrAmountScale       = fmt.Errorf("%w: amount must have at most %d decimal places", apperrors.ErrValidation, AmountScale)
)

// NormalizeAmount validates a money amount and returns it fixed to AmountScale digits.
// Amounts with more precision are rejected instead of rounded.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return decimal.Zero, ErrAmountScale
	}
	return amount.Round(AmountScale), nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}
