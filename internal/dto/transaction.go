package dto

import (
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest moves money from the authenticated account to PayeeID.
type TransferRequest struct {
	PayeeID     string          `json:"payeeID" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"200.00"`
	Description string          `json:"description" binding:"max=255"`
}

// BalanceMovementRequest is the body of deposit and withdraw calls on the authenticated account.
type BalanceMovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"50.00"`
	Description string          `json:"description" binding:"max=255"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string                   `json:"transactionID"`
	PayerID               *string                  `json:"payerID,omitempty"`
	PayeeID               *string                  `json:"payeeID,omitempty"`
	Amount                string                   `json:"amount" example:"200.00"`
	Kind                  domain.TransactionKind   `json:"kind"`
	Status                domain.TransactionStatus `json:"status"`
	Description           string                   `json:"description"`
	OriginalTransactionID *string                  `json:"originalTransactionID,omitempty"`
	Metadata              map[string]string        `json:"metadata,omitempty"`
	CreatedAt             time.Time                `json:"createdAt"`
	LastUpdatedAt         time.Time                `json:"lastUpdatedAt"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		PayerID:               txn.PayerID,
		PayeeID:               txn.PayeeID,
		Amount:                domain.FormatAmount(txn.Amount),
		Kind:                  txn.Kind,
		Status:                txn.Status,
		Description:           txn.Description,
		OriginalTransactionID: txn.OriginalTransactionID,
		Metadata:              txn.Metadata,
		CreatedAt:             txn.CreatedAt,
		LastUpdatedAt:         txn.LastUpdatedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) *ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return &ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}
