package models

import (
	"github.com/shopspring/decimal"
)

// AccountRole is the persisted form of the account role.
type AccountRole string

const (
	Ordinary AccountRole = "ordinary"
	Merchant AccountRole = "merchant"
)

// Account is the row shape of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	Name         string          `db:"name"`
	Document     string          `db:"document"` // digits only, unique
	Email        string          `db:"email"`    // lower-cased, unique
	PasswordHash string          `db:"password_hash"`
	Role         AccountRole     `db:"role"`
	Balance      decimal.Decimal `db:"balance"` // NUMERIC(19,2), never negative
	AuditFields
}
