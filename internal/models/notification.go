package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification type tags.
const (
	NotificationTypeSessionReminder  = "session_reminder"
	NotificationTypeZoomLinkReady    = "zoom_link_ready"
	NotificationTypeBookingCreated   = "booking_created"
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypeBookingCancelled = "booking_cancelled"
)

// Notification is one in-app notification record. Created by any sender via
// the dispatcher, owned by the recipient, never mutated after creation
// (read_at excepted).
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
