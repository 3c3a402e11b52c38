package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
)

const defaultSweepBatch = 100

// pendingSweeper fails transfers left pending past their TTL, e.g. by a crash between the
// two units of work of a transfer.
type pendingSweeper struct {
	BaseService
	uow      portsrepo.UnitOfWork
	audit    portssvc.AuditSink
	metrics  *Metrics
	ttl      time.Duration
	interval time.Duration
	batch    int
	now      func() time.Time
}

// SweeperOption is a functional option for configuring the pending sweeper
type SweeperOption func(*pendingSweeper)

func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *pendingSweeper) { s.now = now }
}

func WithSweeperBatch(n int) SweeperOption {
	return func(s *pendingSweeper) {
		if n > 0 {
			s.batch = n
		}
	}
}

func WithSweeperMetrics(m *Metrics) SweeperOption {
	return func(s *pendingSweeper) { s.metrics = m }
}

func NewPendingSweeper(uow portsrepo.UnitOfWork, audit portssvc.AuditSink, ttl, interval time.Duration, options ...SweeperOption) portssvc.PendingSweeperSvc {
	s := &pendingSweeper{
		uow:      uow,
		audit:    audit,
		ttl:      ttl,
		interval: interval,
		batch:    defaultSweepBatch,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *pendingSweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	var expired []domain.Transaction
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		expired = expired[:0]
		stale, err := repos.Transactions.LockStalePending(ctx, now.Add(-s.ttl), s.batch)
		if err != nil {
			return err
		}
		for _, txn := range stale {
			if err := txn.Fail(domain.FailureExpired, SystemActor, now); err != nil {
				return err
			}
			if err := repos.Transactions.SaveTransaction(ctx, txn); err != nil {
				return err
			}
			expired = append(expired, txn)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Pending sweep failed")
		return 0, classify("sweep pending transactions", err)
	}

	for _, txn := range expired {
		if s.audit != nil {
			s.audit.Emit(ctx, domain.NewAuditEvent(domain.EventTransactionExpired, txn, now))
		}
	}
	s.metrics.observeExpired(len(expired))
	if len(expired) > 0 {
		s.LogInfo(ctx, "Expired stale pending transactions", slog.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (s *pendingSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A full batch means more may be waiting.
			for {
				n, err := s.SweepOnce(ctx)
				if err != nil || n < s.batch || ctx.Err() != nil {
					break
				}
			}
		}
	}
}
