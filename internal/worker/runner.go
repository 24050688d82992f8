package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/darisni/backend/pkg/queue"
)

// Runner is the worker loop: dequeue, dispatch by job type, retry on error.
// Retry exhaustion on a meeting job triggers the terminal failure flag.
type Runner struct {
	queue     *queue.Queue
	reminders *ReminderProcessor
	meetings  *MeetingProcessor
	logger    *zap.Logger
}

// NewRunner creates the worker loop.
func NewRunner(q *queue.Queue, reminders *ReminderProcessor, meetings *MeetingProcessor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{queue: q, reminders: reminders, meetings: meetings, logger: logger}
}

// Run consumes jobs until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("worker stopping")
			return
		default:
		}

		job, key, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("worker stopping")
				return
			}
			r.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		r.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := r.process(ctx, job); err != nil {
			r.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			r.retry(ctx, key, job)
			time.Sleep(queue.RetryBackoff)
		}
	}
}

func (r *Runner) process(ctx context.Context, job *queue.Job) error {
	sessionID, err := job.SessionID()
	if err != nil {
		// Malformed payload: drop with a log, retrying cannot help.
		r.logger.Error("malformed job payload", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	switch job.Type {
	case queue.JobTypeSessionReminder:
		return r.reminders.Process(ctx, sessionID)
	case queue.JobTypeMeetingCreate:
		return r.meetings.Process(ctx, sessionID)
	default:
		r.logger.Error("unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return nil
	}
}

func (r *Runner) retry(ctx context.Context, key string, job *queue.Job) {
	deadLettered, err := r.queue.Retry(ctx, key, job)
	if err != nil {
		r.logger.Error("retry enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	if deadLettered && job.Type == queue.JobTypeMeetingCreate {
		if sessionID, err := job.SessionID(); err == nil {
			r.meetings.OnRetriesExhausted(ctx, sessionID)
		}
	}
}
