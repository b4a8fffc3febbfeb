// Package notify sends in-app notifications without blocking the caller.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/queue"
)

const enqueueTimeout = 3 * time.Second

// Notifier delivers a notification best-effort. Implementations never return errors to callers.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n models.Notification)

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n models.Notification) { f(ctx, n) }

// Nop drops every notification.
var Nop Notifier = Func(func(context.Context, models.Notification) {})

// Enqueuer pushes notification jobs.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, payload queue.NotificationPayload) error
}

// QueueNotifier hands notifications to the worker queue from a goroutine.
type QueueNotifier struct {
	q      Enqueuer
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(q Enqueuer, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{q: q, logger: logger}
}

// Notify enqueues n asynchronously. The request context is not used so that enqueueing
// outlives the request.
func (n *QueueNotifier) Notify(_ context.Context, msg models.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()
		err := n.q.EnqueueNotification(ctx, queue.NotificationPayload{
			UserID: msg.UserID,
			Type:   msg.Type,
			Title:  msg.Title,
			Body:   msg.Body,
			Meta:   msg.Meta,
		})
		if err != nil {
			n.logger.Warn("enqueue notification failed",
				zap.String("user_id", msg.UserID.String()), zap.String("type", msg.Type), zap.Error(err))
		}
	}()
}
