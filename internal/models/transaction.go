package models

import "github.com/shopspring/decimal"

// Transaction is the row shape of the transactions table.
// PayerID, PayeeID and OriginalTransactionID are nullable foreign keys.
type Transaction struct {
	TransactionID         string            `db:"transaction_id"`
	PayerID               *string           `db:"payer_id"`
	PayeeID               *string           `db:"payee_id"`
	Amount                decimal.Decimal   `db:"amount"`
	Kind                  string            `db:"kind"`
	Status                string            `db:"status"`
	Description           string            `db:"description"`
	OriginalTransactionID *string           `db:"original_transaction_id"`
	Metadata              map[string]string `db:"metadata"` // JSONB
	AuditFields
}
