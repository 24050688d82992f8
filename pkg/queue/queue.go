// Package queue is a Redis list-backed job queue for the session pipeline.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueReminders is the Redis list key for session reminder jobs.
	QueueReminders = "worker:reminders"
	// QueueMeetings is the Redis list key for meeting provisioning jobs.
	QueueMeetings = "worker:meetings"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeSessionReminder JobType = "session_reminder"
	JobTypeMeetingCreate   JobType = "meeting_create"
)

// SessionPayload is the payload for both session pipeline job kinds.
// Jobs carry only the session ID; the processor reloads current state so a
// job enqueued before a cancellation or a concurrent commit stays harmless.
type SessionPayload struct {
	SessionID uuid.UUID `json:"session_id"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionID decodes the session payload of a job.
func (j *Job) SessionID() (uuid.UUID, error) {
	var p SessionPayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p.SessionID, nil
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

// EnqueueSessionReminder enqueues a reminder job for a session.
func (q *Queue) EnqueueSessionReminder(ctx context.Context, sessionID uuid.UUID) error {
	return q.enqueue(ctx, QueueReminders, JobTypeSessionReminder, sessionID)
}

// EnqueueMeetingCreate enqueues a meeting provisioning job for a session.
func (q *Queue) EnqueueMeetingCreate(ctx context.Context, sessionID uuid.UUID) error {
	return q.enqueue(ctx, QueueMeetings, JobTypeMeetingCreate, sessionID)
}

func (q *Queue) enqueue(ctx context.Context, key string, typ JobType, sessionID uuid.UUID) error {
	body, err := json.Marshal(SessionPayload{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      typ,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued job",
		zap.String("job_id", job.ID),
		zap.String("type", string(typ)),
		zap.String("session_id", sessionID.String()))
	return nil
}

// Dequeue blocks until a job is available on either pipeline queue or ctx is
// done. Returns the job and the queue key it came from.
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, 0, QueueReminders, QueueMeetings).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job on its original queue with incremented attempt.
// If attempt >= MaxRetries the job is pushed to the DLQ instead and
// deadLettered is true, so the caller can apply terminal-failure handling.
func (q *Queue) Retry(ctx context.Context, key string, job *Job) (deadLettered bool, err error) {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return false, err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return true, err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return true, nil
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return false, err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return false, nil
}
