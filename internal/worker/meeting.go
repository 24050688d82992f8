package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darisni/backend/internal/meetings"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
)

// lockTTL bounds how long a crashed worker can hold a session's
// provisioning lock.
const lockTTL = 10 * time.Minute

// MeetingProcessor provisions the remote meeting for a session and notifies
// both participants. Duplicate and concurrent jobs for the same session are
// expected; the lock plus the conditional update in the store guarantee at
// most one successful provisioning.
type MeetingProcessor struct {
	store    SessionStore
	provider MeetingCreator
	notifier Notifier
	locker   Locker
	logger   *zap.Logger
}

// NewMeetingProcessor creates a meeting provisioning processor.
func NewMeetingProcessor(store SessionStore, provider MeetingCreator, notifier Notifier, locker Locker, logger *zap.Logger) *MeetingProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingProcessor{store: store, provider: provider, notifier: notifier, locker: locker, logger: logger}
}

// Process executes one provisioning job. A returned error means the job is
// retryable; nil covers success and every harmless no-op (session gone,
// already provisioned, cancelled, lost the race).
func (p *MeetingProcessor) Process(ctx context.Context, sessionID uuid.UUID) error {
	s, err := p.store.Detail(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		// Cancelled or deleted between scan and execution.
		p.logger.Info("session vanished, skipping meeting job", zap.String("session_id", sessionID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if s.Provisioned() {
		return nil
	}
	if s.Status != models.SessionStatusScheduled {
		return nil
	}

	lockKey := "lock:meeting:" + sessionID.String()
	acquired, err := p.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		// Another worker is provisioning this session right now.
		p.logger.Debug("meeting lock held elsewhere", zap.String("session_id", sessionID.String()))
		return nil
	}
	defer func() {
		if err := p.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			p.logger.Warn("release lock failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
	}()

	// Re-read under the lock: a holder that just released may have committed.
	s, err = p.store.Detail(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload session: %w", err)
	}
	if s.Provisioned() || s.Status != models.SessionStatusScheduled {
		return nil
	}

	if err := p.store.MarkMeetingAttempted(ctx, sessionID); err != nil {
		return fmt.Errorf("mark attempted: %w", err)
	}

	res, err := p.provider.CreateMeeting(ctx, s.Teacher.Email, meetings.Request{
		Topic:            fmt.Sprintf("%s - %s with %s", s.Subject, s.Student.FullName, s.Teacher.FullName),
		StartsAt:         s.StartsAt,
		DurationMin:      s.DurationMin,
		HostVideo:        true,
		ParticipantVideo: true,
		WaitingRoom:      true,
		MuteUponEntry:    true,
		AutoRecording:    "none",
	})
	if err != nil {
		// Surface to the queue's retry layer; no partial state persists.
		return fmt.Errorf("create meeting for session %s: %w", sessionID, err)
	}

	won, err := p.store.SetMeetingResult(ctx, sessionID, res.MeetingID, res.JoinURL, res.StartURL)
	if err != nil {
		return fmt.Errorf("persist meeting result: %w", err)
	}
	if !won {
		// A concurrent job committed first, or the session was cancelled
		// mid-flight. Either way there is nothing left to do.
		p.logger.Info("meeting result discarded, concurrent commit or cancellation",
			zap.String("session_id", sessionID.String()))
		return nil
	}

	p.notifyParticipants(ctx, s, res)
	p.logger.Info("meeting provisioned",
		zap.String("session_id", sessionID.String()),
		zap.String("meeting_id", res.MeetingID))
	return nil
}

func (p *MeetingProcessor) notifyParticipants(ctx context.Context, s *sessions.Detail, res *meetings.Result) {
	data := map[string]string{
		"session_id":  s.ID.String(),
		"booking_ref": s.BookingRef,
		"meeting_id":  res.MeetingID,
	}

	msg := notify.MeetingReadyMessage(s.Student.Locale, s.Subject, s.BookingRef, res.JoinURL)
	p.notifier.Send(ctx, []models.User{s.Student}, models.NotificationTypeZoomLinkReady, msg.Title, msg.Body, data)

	msg = notify.MeetingReadyMessage(s.Teacher.Locale, s.Subject, s.BookingRef, res.StartURL)
	p.notifier.Send(ctx, []models.User{s.Teacher}, models.NotificationTypeZoomLinkReady, msg.Title, msg.Body, data)
}

// OnRetriesExhausted marks the session as failed once the queue gives up on
// a provisioning job. The flag is one-way and never set on sessions that got
// a meeting from a concurrent job.
func (p *MeetingProcessor) OnRetriesExhausted(ctx context.Context, sessionID uuid.UUID) {
	if err := p.store.MarkMeetingFailed(ctx, sessionID); err != nil {
		p.logger.Error("mark meeting failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}
	p.logger.Error("meeting provisioning abandoned after retries",
		zap.String("session_id", sessionID.String()))
}
