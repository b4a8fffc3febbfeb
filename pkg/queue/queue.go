package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueNotifications is the Redis list key for notification delivery jobs.
	QueueNotifications = "worker:notifications"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
	// pollTimeout bounds a single BLPOP so shutdown is observed between polls.
	pollTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeNotification JobType = "notification"
)

// NotificationPayload is the payload for notification jobs.
type NotificationPayload struct {
	UserID uuid.UUID              `json:"userId"`
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Queue     string          `json:"queue"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// NewJob builds a job envelope for payload.
func NewJob(queueKey string, jobType JobType, payload interface{}) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Queue:     queueKey,
		Payload:   body,
		CreatedAt: time.Now(),
	}, nil
}

// EnqueueNotification enqueues a notification delivery job.
func (q *Queue) EnqueueNotification(ctx context.Context, payload NotificationPayload) error {
	job, err := NewJob(QueueNotifications, JobTypeNotification, payload)
	if err != nil {
		return err
	}
	if err := q.push(ctx, job.Queue, job); err != nil {
		return err
	}
	q.logger.Debug("enqueued notification job",
		zap.String("job_id", job.ID),
		zap.String("user_id", payload.UserID.String()),
		zap.String("type", payload.Type))
	return nil
}

// Dequeue blocks until a job is available on one of keys or the poll times out.
// A timeout returns a nil job and nil error.
func (q *Queue) Dequeue(ctx context.Context, keys ...string) (*Job, error) {
	if len(keys) == 0 {
		keys = []string{QueueNotifications}
	}
	result, err := q.client.BLPop(ctx, pollTimeout, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	if job.Queue == "" {
		job.Queue = result[0]
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		if err := q.push(ctx, QueueDLQ, job); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	key := job.Queue
	if key == "" {
		key = QueueNotifications
	}
	if err := q.push(ctx, key, job); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}
