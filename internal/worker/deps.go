// Package worker runs the session pipeline jobs: pre-session reminders and
// meeting provisioning.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/darisni/backend/internal/meetings"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
)

// SessionStore is the session persistence surface the processors need.
// *sessions.Repository implements it; tests substitute an in-memory fake.
type SessionStore interface {
	Detail(ctx context.Context, id uuid.UUID) (*sessions.Detail, error)
	SetMeetingResult(ctx context.Context, id uuid.UUID, meetingID, joinURL, hostURL string) (bool, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
	MarkMeetingAttempted(ctx context.Context, id uuid.UUID) error
	MarkMeetingFailed(ctx context.Context, id uuid.UUID) error
}

// MeetingCreator provisions a remote meeting. *meetings.ZoomClient
// implements it.
type MeetingCreator interface {
	CreateMeeting(ctx context.Context, hostID string, req meetings.Request) (*meetings.Result, error)
}

// Notifier fans a notification out to recipients. *notify.Dispatcher
// implements it.
type Notifier interface {
	Send(ctx context.Context, recipients []models.User, typ, title, body string, data map[string]string) []notify.Result
}

// Locker is an advisory lock keyed by string, used to keep two concurrent
// jobs for the same session from both calling the provider.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
