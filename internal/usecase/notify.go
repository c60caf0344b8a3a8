package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Notifier is the outbound chat transport. Delivery is best-effort:
// implementations swallow failures and never block on retries.
type Notifier interface {
	Notify(ctx context.Context, url, message string)
	NotifyDefault(ctx context.Context, message string)
}

// NopNotifier discards every message.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) {}

func (NopNotifier) NotifyDefault(context.Context, string) {}

// NotificationDispatcher fans notifications out through a bounded worker
// pool so request handlers never wait on webhook round-trips. Each task
// runs on a detached context: a caller disconnecting mid-request must
// not cancel an already-queued notification.
type NotificationDispatcher struct {
	pool     *ants.Pool
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
}

func NewNotificationDispatcher(workers int, notifier Notifier, logger *slog.Logger) (*NotificationDispatcher, error) {
	if workers < 1 {
		workers = 4
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create notification pool: %w", err)
	}

	return &NotificationDispatcher{
		pool:     pool,
		notifier: notifier,
		timeout:  5 * time.Second,
		logger:   logger,
	}, nil
}

// Dispatch queues message for url. A saturated pool drops the message,
// consistent with fire-and-forget semantics.
func (d *NotificationDispatcher) Dispatch(url, message string) {
	if d == nil || url == "" || message == "" {
		return
	}
	if err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.notifier.Notify(ctx, url, message)
	}); err != nil {
		d.logger.Debug("notification dropped", "error", err)
	}
}

// DispatchDefault queues message for the operator webhook.
func (d *NotificationDispatcher) DispatchDefault(message string) {
	if d == nil || message == "" {
		return
	}
	if err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.notifier.NotifyDefault(ctx, message)
	}); err != nil {
		d.logger.Debug("notification dropped", "error", err)
	}
}

func (d *NotificationDispatcher) Close() {
	if d != nil && d.pool != nil {
		d.pool.Release()
	}
}
