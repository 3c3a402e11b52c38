// Package memory is an in-process implementation of the account and transaction stores.
// It offers the same guarantees as the Postgres adapter: row locks taken in ascending ID
// order, writes that become visible only when the unit of work commits, and skip-locked
// sweeping of stale pending rows.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/SscSPs/payflow_backend/internal/utils/pagination"
)

// Store holds committed accounts and transactions.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction

	locksMu  sync.Mutex
	rowLocks map[string]*sync.Mutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		rowLocks:     make(map[string]*sync.Mutex),
	}
}

// NewRepositoryProvider exposes one store through the repository ports.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     &AccountRepository{store: store},
		TransactionRepo: &TransactionRepository{store: store},
		UnitOfWork:      &UnitOfWork{store: store},
		Ping:            func(context.Context) error { return nil },
	}
}

func (s *Store) rowLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[key] = l
	}
	return l
}

func accountKey(id string) string     { return "account:" + id }
func transactionKey(id string) string { return "transaction:" + id }

func cloneTransaction(t domain.Transaction) domain.Transaction {
	t.Metadata = maps.Clone(t.Metadata)
	return t
}

// conflict enforces the unique email and document constraints. Callers hold s.mu.
func (s *Store) conflict(acc domain.Account) error {
	for id, existing := range s.accounts {
		if id == acc.AccountID {
			continue
		}
		if strings.EqualFold(existing.Email, acc.Email) {
			return fmt.Errorf("%w: email is already registered", apperrors.ErrDuplicate)
		}
		if existing.Document == acc.Document {
			return fmt.Errorf("%w: document is already registered", apperrors.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) putAccount(acc domain.Account) error {
	if err := s.conflict(acc); err != nil {
		return err
	}
	if prev, ok := s.accounts[acc.AccountID]; ok {
		acc.CreatedAt = prev.CreatedAt
		acc.CreatedBy = prev.CreatedBy
		acc.Document = prev.Document
		acc.Role = prev.Role
	}
	s.accounts[acc.AccountID] = acc
	return nil
}

func (s *Store) putTransaction(txn domain.Transaction) {
	if prev, ok := s.transactions[txn.TransactionID]; ok {
		// Only status, metadata and update stamps are mutable.
		prev.Status = txn.Status
		prev.Metadata = maps.Clone(txn.Metadata)
		prev.LastUpdatedAt = txn.LastUpdatedAt
		prev.LastUpdatedBy = txn.LastUpdatedBy
		s.transactions[txn.TransactionID] = prev
		return
	}
	s.transactions[txn.TransactionID] = cloneTransaction(txn)
}

// AccountRepository is the pool-level account store.
type AccountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, acc := range r.store.accounts {
		if match(acc) {
			found := acc
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *AccountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acc, ok := r.store.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (r *AccountRepository) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *AccountRepository) FindAccountByDocument(_ context.Context, document string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Document == document })
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindAccountByEmail(ctx, email)
	return err == nil, nil
}

func (r *AccountRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	_, err := r.FindAccountByDocument(ctx, document)
	return err == nil, nil
}

// ListAccounts orders by name then ID, like the SQL adapter.
func (r *AccountRepository) ListAccounts(_ context.Context, role domain.AccountRole, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.store.mu.RLock()
	all := make([]domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		if role == "" || acc.Role == role {
			all = append(all, acc)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].AccountID < all[j].AccountID
	})
	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// SaveAccount holds the account row lock so it never interleaves with an open unit of work.
func (r *AccountRepository) SaveAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	l := r.store.rowLock(accountKey(account.AccountID))
	l.Lock()
	defer l.Unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.putAccount(account); err != nil {
		return nil, err
	}
	stored := r.store.accounts[account.AccountID]
	return &stored, nil
}

// TransactionRepository is the pool-level transaction store.
type TransactionRepository struct {
	store *Store
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn = cloneTransaction(txn)
	return &txn, nil
}

func newestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].TransactionID > txns[j].TransactionID
	})
}

func (r *TransactionRepository) FindTransactionsByParticipant(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		hasCursor bool
		lastAt    time.Time
		lastID    string
	)
	if nextToken != nil && *nextToken != "" {
		var err error
		lastAt, lastID, err = pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		hasCursor = true
	}

	r.store.mu.RLock()
	var matched []domain.Transaction
	for _, txn := range r.store.transactions {
		if !txn.Involves(accountID) {
			continue
		}
		if hasCursor {
			before := txn.CreatedAt.Before(lastAt) || (txn.CreatedAt.Equal(lastAt) && txn.TransactionID < lastID)
			if !before {
				continue
			}
		}
		matched = append(matched, cloneTransaction(txn))
	}
	r.store.mu.RUnlock()

	newestFirst(matched)
	var next *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		next = &token
	}
	if matched == nil {
		matched = []domain.Transaction{}
	}
	return matched, next, nil
}

func (r *TransactionRepository) FindTransactionsByStatus(_ context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	r.store.mu.RLock()
	matched := []domain.Transaction{}
	for _, txn := range r.store.transactions {
		if txn.Status == status {
			matched = append(matched, cloneTransaction(txn))
		}
	}
	r.store.mu.RUnlock()
	newestFirst(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *TransactionRepository) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	l := r.store.rowLock(transactionKey(txn.TransactionID))
	l.Lock()
	defer l.Unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.putTransaction(txn)
	return nil
}
