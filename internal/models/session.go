package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the session lifecycle.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Session is one scheduled lesson occurrence, created when a booking is
// confirmed. MeetingID and JoinURL are set together by the provisioning job,
// at most once. ReminderSentAt, once set, is never cleared. MeetingFailed is
// set only after provisioning retries are exhausted.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	BookingID   uuid.UUID     `json:"booking_id"`
	StudentID   uuid.UUID     `json:"student_id"`
	TeacherID   uuid.UUID     `json:"teacher_id"`
	Subject     string        `json:"subject"`
	StartsAt    time.Time     `json:"starts_at"` // session_date + start_time in the platform timezone
	DurationMin int           `json:"duration_min"`
	Status      SessionStatus `json:"status"`

	MeetingID *string `json:"meeting_id,omitempty"`
	JoinURL   *string `json:"join_url,omitempty"`
	HostURL   *string `json:"host_url,omitempty"`

	ReminderSentAt     *time.Time `json:"two_hour_reminder_sent_at,omitempty"`
	MeetingAttemptedAt *time.Time `json:"zoom_creation_attempted_at,omitempty"`
	MeetingFailed      bool       `json:"zoom_generation_failed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provisioned reports whether the session already has its remote meeting.
func (s *Session) Provisioned() bool {
	return s.MeetingID != nil && s.JoinURL != nil
}
