package mapping

import (
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/SscSPs/payflow_backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		Name:         d.Name,
		Document:     d.Document,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.AccountRole(d.Role),
		Balance:      d.Balance,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		Name:         m.Name,
		Document:     m.Document,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.AccountRole(m.Role),
		Balance:      m.Balance,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
