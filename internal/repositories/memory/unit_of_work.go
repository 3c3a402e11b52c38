package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
)

// UnitOfWork serialises conflicting work with per-row mutexes and buffers writes until commit.
type UnitOfWork struct {
	store *Store
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Operational("unit of work not started", err)
	}
	tx := &memTx{
		store:        u.store,
		held:         make(map[string]*sync.Mutex),
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
	}
	defer tx.release()

	if err := fn(ctx, portsrepo.TxRepositories{
		Accounts:     (*memAccountTx)(tx),
		Transactions: (*memTransactionTx)(tx),
	}); err != nil {
		return err
	}
	return tx.commit()
}

// memTx is one open unit of work.
type memTx struct {
	store *Store
	held  map[string]*sync.Mutex
	order []string

	accounts     map[string]domain.Account
	accountOrder []string
	transactions map[string]domain.Transaction
	txnOrder     []string
}

func (t *memTx) lock(key string) {
	if _, ok := t.held[key]; ok {
		return
	}
	l := t.store.rowLock(key)
	l.Lock()
	t.held[key] = l
	t.order = append(t.order, key)
}

func (t *memTx) tryLock(key string) bool {
	if _, ok := t.held[key]; ok {
		return true
	}
	l := t.store.rowLock(key)
	if !l.TryLock() {
		return false
	}
	t.held[key] = l
	t.order = append(t.order, key)
	return true
}

func (t *memTx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.held[t.order[i]].Unlock()
	}
	t.held = nil
	t.order = nil
}

func (t *memTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// Validate every buffered account first so a duplicate leaves nothing half-applied.
	for _, id := range t.accountOrder {
		if err := t.store.conflict(t.accounts[id]); err != nil {
			return err
		}
	}
	for _, id := range t.accountOrder {
		_ = t.store.putAccount(t.accounts[id])
	}
	for _, id := range t.txnOrder {
		t.store.putTransaction(t.transactions[id])
	}
	return nil
}

type memAccountTx memTx

func (a *memAccountTx) tx() *memTx { return (*memTx)(a) }

func (a *memAccountTx) LockAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	t := a.tx()
	locked := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		t.lock(accountKey(id))
		if buffered, ok := t.accounts[id]; ok {
			locked[id] = buffered
			continue
		}
		t.store.mu.RLock()
		acc, ok := t.store.accounts[id]
		t.store.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		locked[id] = acc
	}
	return locked, nil
}

func (a *memAccountTx) CreateAccount(_ context.Context, account domain.Account) error {
	t := a.tx()
	t.store.mu.RLock()
	_, exists := t.store.accounts[account.AccountID]
	t.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	t.lock(accountKey(account.AccountID))
	if _, seen := t.accounts[account.AccountID]; !seen {
		t.accountOrder = append(t.accountOrder, account.AccountID)
	}
	t.accounts[account.AccountID] = account
	return nil
}

func (a *memAccountTx) SaveAccounts(_ context.Context, accounts ...domain.Account) error {
	t := a.tx()
	for _, acc := range accounts {
		if _, ok := t.held[accountKey(acc.AccountID)]; !ok {
			return fmt.Errorf("account %s saved without holding its lock", acc.AccountID)
		}
		if _, seen := t.accounts[acc.AccountID]; !seen {
			t.accountOrder = append(t.accountOrder, acc.AccountID)
		}
		t.accounts[acc.AccountID] = acc
	}
	return nil
}

type memTransactionTx memTx

func (m *memTransactionTx) tx() *memTx { return (*memTx)(m) }

func (m *memTransactionTx) current(id string) (domain.Transaction, bool) {
	t := m.tx()
	if buffered, ok := t.transactions[id]; ok {
		return cloneTransaction(buffered), true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	txn, ok := t.store.transactions[id]
	return cloneTransaction(txn), ok
}

func (m *memTransactionTx) LockTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.tx().lock(transactionKey(transactionID))
	txn, ok := m.current(transactionID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

func (m *memTransactionTx) LockStalePending(_ context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	t := m.tx()
	t.store.mu.RLock()
	var candidates []domain.Transaction
	for _, txn := range t.store.transactions {
		if txn.Status == domain.StatusPending && txn.CreatedAt.Before(olderThan) {
			candidates = append(candidates, txn)
		}
	}
	t.store.mu.RUnlock()
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })

	locked := []domain.Transaction{}
	for _, c := range candidates {
		if len(locked) >= limit {
			break
		}
		if !t.tryLock(transactionKey(c.TransactionID)) {
			continue
		}
		// Re-read under the lock: the row may have completed while we were waiting.
		txn, ok := m.current(c.TransactionID)
		if !ok || txn.Status != domain.StatusPending {
			continue
		}
		locked = append(locked, txn)
	}
	return locked, nil
}

func (m *memTransactionTx) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	t := m.tx()
	key := transactionKey(txn.TransactionID)
	if _, ok := t.held[key]; !ok {
		// New rows are locked on first write, matching an INSERT inside a SQL transaction.
		t.lock(key)
	}
	if _, seen := t.transactions[txn.TransactionID]; !seen {
		t.txnOrder = append(t.txnOrder, txn.TransactionID)
	}
	t.transactions[txn.TransactionID] = cloneTransaction(txn)
	return nil
}
