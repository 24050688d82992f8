package notify

import (
	"fmt"
	"time"

	"github.com/darisni/backend/internal/models"
)

// Message is a localized notification title/body pair.
type Message struct {
	Title string
	Body  string
}

// ReminderMessage builds the pre-session reminder text in the recipient's
// locale.
func ReminderMessage(locale, subject, bookingRef string, startsAt time.Time) Message {
	at := startsAt.Format("15:04")
	if locale == models.LocaleArabic {
		return Message{
			Title: "تذكير بالدرس القادم",
			Body:  fmt.Sprintf("درس %s (حجز %s) يبدأ الساعة %s.", subject, bookingRef, at),
		}
	}
	return Message{
		Title: "Upcoming lesson reminder",
		Body:  fmt.Sprintf("Your %s lesson (booking %s) starts at %s.", subject, bookingRef, at),
	}
}

// BookingMessage builds booking lifecycle notification text in the
// recipient's locale.
func BookingMessage(locale, typ, subject, bookingRef string) Message {
	if locale == models.LocaleArabic {
		switch typ {
		case models.NotificationTypeBookingConfirmed:
			return Message{
				Title: "تم تأكيد الحجز",
				Body:  fmt.Sprintf("تم تأكيد حجز درس %s (حجز %s).", subject, bookingRef),
			}
		case models.NotificationTypeBookingCancelled:
			return Message{
				Title: "تم إلغاء الحجز",
				Body:  fmt.Sprintf("تم إلغاء حجز درس %s (حجز %s).", subject, bookingRef),
			}
		default:
			return Message{
				Title: "طلب حجز جديد",
				Body:  fmt.Sprintf("لديك طلب حجز جديد لدرس %s (حجز %s).", subject, bookingRef),
			}
		}
	}
	switch typ {
	case models.NotificationTypeBookingConfirmed:
		return Message{
			Title: "Booking confirmed",
			Body:  fmt.Sprintf("Your %s booking (%s) has been confirmed.", subject, bookingRef),
		}
	case models.NotificationTypeBookingCancelled:
		return Message{
			Title: "Booking cancelled",
			Body:  fmt.Sprintf("Your %s booking (%s) has been cancelled.", subject, bookingRef),
		}
	default:
		return Message{
			Title: "New booking request",
			Body:  fmt.Sprintf("You have a new booking request for %s (%s).", subject, bookingRef),
		}
	}
}

// MeetingReadyMessage builds the join-link notification text in the
// recipient's locale. url is the link appropriate for the recipient (join
// URL for students, host URL for teachers).
func MeetingReadyMessage(locale, subject, bookingRef, url string) Message {
	if locale == models.LocaleArabic {
		return Message{
			Title: "رابط الدرس جاهز",
			Body:  fmt.Sprintf("رابط درس %s (حجز %s): %s", subject, bookingRef, url),
		}
	}
	return Message{
		Title: "Your lesson link is ready",
		Body:  fmt.Sprintf("Link for your %s lesson (booking %s): %s", subject, bookingRef, url),
	}
}
