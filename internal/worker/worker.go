// Package worker runs background jobs: notification delivery and invitation expiry.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/queue"
)

// EventNotification is the WebSocket event carrying a notification.
const EventNotification = "notification"

// JobQueue is the subset of *queue.Queue the processor needs.
type JobQueue interface {
	Dequeue(ctx context.Context, keys ...string) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Publisher pushes an event to a user's live connections.
type Publisher interface {
	PublishUserEvent(userID uuid.UUID, event string, payload []byte) error
}

// NotificationProcessor stores queued notifications and pushes them to connected users.
type NotificationProcessor struct {
	store   NotificationStore
	pub     Publisher
	queue   JobQueue
	logger  *zap.Logger
	backoff time.Duration
}

// NewNotificationProcessor creates a notification processor. pub may be nil.
func NewNotificationProcessor(store NotificationStore, pub Publisher, q JobQueue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{store: store, pub: pub, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one notification job. Only a failed insert is an error; the live push is best-effort
// so a retry never stores the same notification twice.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("notification without user")
	}

	n := &models.Notification{
		UserID: payload.UserID,
		Type:   payload.Type,
		Title:  payload.Title,
		Body:   payload.Body,
		Meta:   payload.Meta,
	}
	if err := p.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if p.pub != nil {
		body, err := json.Marshal(n)
		if err == nil {
			err = p.pub.PublishUserEvent(n.UserID, EventNotification, body)
		}
		if err != nil {
			p.logger.Warn("push notification failed", zap.String("user_id", n.UserID.String()), zap.Error(err))
		}
	}
	p.logger.Debug("notification delivered",
		zap.String("job_id", job.ID),
		zap.String("user_id", n.UserID.String()),
		zap.String("type", n.Type))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, queue.QueueNotifications)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, p.backoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			sleep(ctx, p.backoff)
		}
	}
}

// Expirer expires invitations whose reply deadline has passed.
type Expirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// InvitationSweeper periodically expires overdue pending invitations.
type InvitationSweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewInvitationSweeper creates a sweeper running every interval.
func NewInvitationSweeper(expirer Expirer, interval time.Duration, logger *zap.Logger) *InvitationSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &InvitationSweeper{expirer: expirer, interval: interval, logger: logger, now: time.Now}
}

// Sweep runs one expiry pass.
func (s *InvitationSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.expirer.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("invitations expired", zap.Int64("count", n))
	}
	return n, nil
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *InvitationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("invitation sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("invitation sweeper stopping")
			return
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
