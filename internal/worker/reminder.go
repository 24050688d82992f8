package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
)

// ReminderProcessor sends the pre-session reminder to both participants,
// guarded by the two_hour_reminder_sent_at timestamp so a session is
// reminded at most once no matter how many scans enqueue it.
type ReminderProcessor struct {
	store    SessionStore
	notifier Notifier
	logger   *zap.Logger
}

// NewReminderProcessor creates a reminder processor.
func NewReminderProcessor(store SessionStore, notifier Notifier, logger *zap.Logger) *ReminderProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderProcessor{store: store, notifier: notifier, logger: logger}
}

// Process executes one reminder job.
func (p *ReminderProcessor) Process(ctx context.Context, sessionID uuid.UUID) error {
	s, err := p.store.Detail(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		p.logger.Info("session vanished, skipping reminder", zap.String("session_id", sessionID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if s.ReminderSentAt != nil {
		return nil
	}
	if s.Status != models.SessionStatusScheduled {
		return nil
	}

	// Claim the guard before sending: the conditional update makes sure only
	// one of two racing jobs proceeds to notify.
	won, err := p.store.MarkReminderSent(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if !won {
		return nil
	}

	data := map[string]string{
		"session_id":  s.ID.String(),
		"booking_ref": s.BookingRef,
	}
	msg := notify.ReminderMessage(s.Student.Locale, s.Subject, s.BookingRef, s.StartsAt)
	p.notifier.Send(ctx, []models.User{s.Student}, models.NotificationTypeSessionReminder, msg.Title, msg.Body, data)

	msg = notify.ReminderMessage(s.Teacher.Locale, s.Subject, s.BookingRef, s.StartsAt)
	p.notifier.Send(ctx, []models.User{s.Teacher}, models.NotificationTypeSessionReminder, msg.Title, msg.Body, data)

	p.logger.Info("session reminder sent", zap.String("session_id", sessionID.String()))
	return nil
}
