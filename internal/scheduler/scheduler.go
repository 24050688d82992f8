// Package scheduler scans for sessions due for reminders or meeting
// provisioning and enqueues one pipeline job per match.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darisni/backend/config"
)

// Scanner finds sessions whose start time falls in an upcoming window.
// *sessions.Repository implements it.
type Scanner interface {
	FindDueForReminder(ctx context.Context, ref time.Time, lead, halfWidth time.Duration) ([]uuid.UUID, error)
	FindDueForMeeting(ctx context.Context, ref time.Time, lead, halfWidth time.Duration) ([]uuid.UUID, error)
}

// Enqueuer hands sessions to the job pipeline. *queue.Queue implements it.
type Enqueuer interface {
	EnqueueSessionReminder(ctx context.Context, sessionID uuid.UUID) error
	EnqueueMeetingCreate(ctx context.Context, sessionID uuid.UUID) error
}

// Scheduler runs one scan per tick. Enqueueing is fire-and-forget: success
// and failure handling belong to the worker, and a session the scanner
// returns twice is deduped by the job's guard flags, not here.
type Scheduler struct {
	scanner  Scanner
	enqueuer Enqueuer
	cfg      config.SchedulerConfig
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a scheduler.
func New(scanner Scanner, enqueuer Enqueuer, cfg config.SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scanner:  scanner,
		enqueuer: enqueuer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Tick scans both windows once and enqueues a job per matched session.
func (s *Scheduler) Tick(ctx context.Context) {
	ref := s.now()

	ids, err := s.scanner.FindDueForReminder(ctx, ref, s.cfg.ReminderLead, s.cfg.WindowHalfWidth)
	if err != nil {
		s.logger.Error("reminder scan failed", zap.Error(err))
	} else {
		s.enqueueAll(ctx, ids, "reminder", s.enqueuer.EnqueueSessionReminder)
	}

	ids, err = s.scanner.FindDueForMeeting(ctx, ref, s.cfg.MeetingLead, s.cfg.WindowHalfWidth)
	if err != nil {
		s.logger.Error("meeting scan failed", zap.Error(err))
	} else {
		s.enqueueAll(ctx, ids, "meeting", s.enqueuer.EnqueueMeetingCreate)
	}
}

func (s *Scheduler) enqueueAll(ctx context.Context, ids []uuid.UUID, kind string, enqueue func(context.Context, uuid.UUID) error) {
	enqueued := 0
	for _, id := range ids {
		if err := enqueue(ctx, id); err != nil {
			// The session stays unguarded, so the next scan picks it up again.
			s.logger.Error("enqueue failed",
				zap.String("kind", kind),
				zap.String("session_id", id.String()),
				zap.Error(err))
			continue
		}
		enqueued++
	}
	if len(ids) > 0 {
		s.logger.Info("scan complete",
			zap.String("kind", kind),
			zap.Int("matched", len(ids)),
			zap.Int("enqueued", enqueued))
	}
}
