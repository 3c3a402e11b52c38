package mapping

import (
	"maps"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/SscSPs/payflow_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		PayerID:               d.PayerID,
		PayeeID:               d.PayeeID,
		Amount:                d.Amount,
		Kind:                  string(d.Kind),
		Status:                string(d.Status),
		Description:           d.Description,
		OriginalTransactionID: d.OriginalTransactionID,
		Metadata:              maps.Clone(d.Metadata),
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		PayerID:               m.PayerID,
		PayeeID:               m.PayeeID,
		Amount:                m.Amount,
		Kind:                  domain.TransactionKind(m.Kind),
		Status:                domain.TransactionStatus(m.Status),
		Description:           m.Description,
		OriginalTransactionID: m.OriginalTransactionID,
		Metadata:              maps.Clone(m.Metadata),
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
