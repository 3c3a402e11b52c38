package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/sourcegraph/conc/pool"
)

// DispatcherOptions tunes the notification worker pool.
type DispatcherOptions struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Metrics     *Metrics
	Logger      *slog.Logger
}

// NotificationDispatcher delivers notifications off the request path. Delivery failures are
// retried with capped exponential backoff and then dropped; they never reach the caller.
type NotificationDispatcher struct {
	notifier portssvc.Notifier
	opts     DispatcherOptions
	queue    chan portssvc.Notification

	mu      sync.RWMutex
	closed  bool
	started bool
	workers *pool.Pool
	cancel  context.CancelFunc
}

var _ portssvc.NotificationDispatcher = (*NotificationDispatcher)(nil)

func NewNotificationDispatcher(notifier portssvc.Notifier, opts DispatcherOptions) *NotificationDispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 200 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}
	if opts.MaxBackoff < opts.BaseBackoff {
		opts.MaxBackoff = opts.BaseBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &NotificationDispatcher{
		notifier: notifier,
		opts:     opts,
		queue:    make(chan portssvc.Notification, opts.QueueSize),
	}
}

// Start launches the workers. It is a no-op after the first call.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.workers = pool.New().WithMaxGoroutines(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		d.workers.Go(func() { d.work(ctx) })
	}
}

// Enqueue queues n without blocking. It returns false when the queue is full or stopped.
func (d *NotificationDispatcher) Enqueue(n portssvc.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.opts.Metrics.observeNotification("dropped")
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.opts.Metrics.observeNotification("dropped")
		d.opts.Logger.Warn("Notification queue full, dropping",
			slog.String("account_id", n.AccountID),
			slog.String("transaction_id", n.TransactionID))
		return false
	}
}

// Stop closes the queue and waits for queued notifications to drain. When ctx ends first,
// in-flight retries are abandoned and ctx.Err() is returned.
func (d *NotificationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *NotificationDispatcher) work(ctx context.Context) {
	for n := range d.queue {
		d.deliver(ctx, n)
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n portssvc.Notification) {
	logger := d.opts.Logger.With(
		slog.String("account_id", n.AccountID),
		slog.String("transaction_id", n.TransactionID))

	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		if d.notifier.Notify(ctx, n) {
			d.opts.Metrics.observeNotification("sent")
			return
		}
		if attempt == d.opts.MaxAttempts {
			break
		}
		d.opts.Metrics.observeNotification("retried")
		timer := time.NewTimer(d.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			d.opts.Metrics.observeNotification("failed")
			logger.Warn("Notification abandoned on shutdown", slog.Int("attempts", attempt))
			return
		case <-timer.C:
		}
	}
	d.opts.Metrics.observeNotification("failed")
	logger.Warn("Notification delivery failed", slog.Int("attempts", d.opts.MaxAttempts))
}

// backoff returns a full-jitter delay for the given attempt, capped at MaxBackoff.
func (d *NotificationDispatcher) backoff(attempt int) time.Duration {
	ceiling := d.opts.BaseBackoff << (attempt - 1)
	if ceiling <= 0 || ceiling > d.opts.MaxBackoff {
		ceiling = d.opts.MaxBackoff
	}
	return time.Duration(rand.Int64N(int64(ceiling))) + 1
}
