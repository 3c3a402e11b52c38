package domain

import (
	"fmt"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountRole decides what an account may do with its balance.
type AccountRole string

const (
	RoleOrdinary AccountRole = "ordinary" // may send and receive
	RoleMerchant AccountRole = "merchant" // may only receive
)

// IsValid reports whether r is a known role.
func (r AccountRole) IsValid() bool {
	return r == RoleOrdinary || r == RoleMerchant
}

var ErrMerchantCannotSend = fmt.Errorf("%w: merchant accounts cannot originate transfers", apperrors.ErrValidation)

// Account represents a balance holder within the core domain.
type Account struct {
	AccountID    string          `json:"accountID"`
	Name         string          `json:"name"`
	Document     string          `json:"document"` // CPF or CNPJ, digits only
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         AccountRole     `json:"role"`
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}

// CanSend reports whether the account may be the payer of a transfer.
func (a Account) CanSend() bool {
	return a.Role == RoleOrdinary
}

// HasFunds reports whether the balance covers amount.
func (a Account) HasFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Debit removes amount from the balance. The balance is left unchanged on failure.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !a.HasFunds(amount) {
		return fmt.Errorf("%w: account %s has %s, needs %s",
			apperrors.ErrInsufficientFunds, a.AccountID, FormatAmount(a.Balance), FormatAmount(amount))
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}
