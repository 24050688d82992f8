package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the booking lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a student's request for a lesson with a teacher. Confirming a
// booking creates the Session row that the scheduling pipeline acts on.
type Booking struct {
	ID           uuid.UUID     `json:"id"`
	Reference    string        `json:"reference"` // short human-facing code, e.g. BK-4F2A91C3
	StudentID    uuid.UUID     `json:"student_id"`
	TeacherID    uuid.UUID     `json:"teacher_id"`
	Subject      string        `json:"subject"`
	SessionDate  time.Time     `json:"session_date"` // date portion only
	StartTime    string        `json:"start_time"`   // HH:MM:SS
	DurationMin  int           `json:"duration_min"`
	Status       BookingStatus `json:"status"`
	PriceHalalas int           `json:"price_halalas"`
	Currency     string        `json:"currency"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
