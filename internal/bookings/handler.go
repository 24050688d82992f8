package bookings

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/darisni/backend/internal/auth"
	"github.com/darisni/backend/internal/middleware"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
	"github.com/darisni/backend/pkg/response"
)

// Handler serves booking endpoints.
type Handler struct {
	repo       *Repository
	sessions   *sessions.Repository
	users      *auth.Repository
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
}

// NewHandler creates a booking handler.
func NewHandler(repo *Repository, sessionRepo *sessions.Repository, users *auth.Repository, dispatcher *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, sessions: sessionRepo, users: users, dispatcher: dispatcher, logger: logger}
}

type createRequest struct {
	TeacherID    uuid.UUID `json:"teacher_id" binding:"required"`
	Subject      string    `json:"subject" binding:"required"`
	SessionDate  string    `json:"session_date" binding:"required"` // YYYY-MM-DD
	StartTime    string    `json:"start_time" binding:"required"`   // HH:MM
	DurationMin  int       `json:"duration_min" binding:"required,min=30,max=180"`
	PriceHalalas int       `json:"price_halalas" binding:"required,min=0"`
}

// Create registers a pending booking request from a student.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sessionDate, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		response.BadRequest(c, "session_date must be YYYY-MM-DD")
		return
	}
	startTime, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		response.BadRequest(c, "start_time must be HH:MM")
		return
	}

	ctx := c.Request.Context()
	studentID := middleware.UserID(c)
	teacher, err := h.users.GetByID(ctx, req.TeacherID)
	if err != nil || teacher.Role != models.RoleTeacher {
		response.BadRequest(c, "teacher not found")
		return
	}

	booking, err := h.repo.Create(ctx, studentID, teacher.ID, req.Subject,
		sessionDate, startTime.Format("15:04:05"), req.DurationMin, req.PriceHalalas)
	if err != nil {
		h.logger.Error("failed to create booking", zap.Error(err))
		response.Internal(c, "failed to create booking")
		return
	}

	msg := notify.BookingMessage(teacher.Locale, models.NotificationTypeBookingCreated, booking.Subject, booking.Reference)
	h.dispatcher.Send(ctx, []models.User{*teacher}, models.NotificationTypeBookingCreated,
		msg.Title, msg.Body, map[string]string{"booking_id": booking.ID.String(), "booking_ref": booking.Reference})

	response.Created(c, booking)
}

// Confirm accepts a pending booking and creates its session. Only the
// booking's teacher may confirm, and a booking can be confirmed once.
func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}
	ctx := c.Request.Context()
	booking, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "booking not found")
			return
		}
		h.logger.Error("failed to fetch booking", zap.Error(err))
		response.Internal(c, "failed to fetch booking")
		return
	}
	if booking.TeacherID != middleware.UserID(c) {
		response.Forbidden(c, "not your booking")
		return
	}

	won, err := h.repo.Confirm(ctx, id)
	if err != nil {
		h.logger.Error("failed to confirm booking", zap.Error(err))
		response.Internal(c, "failed to confirm booking")
		return
	}
	if !won {
		response.Conflict(c, "booking is not pending")
		return
	}
	booking.Status = models.BookingStatusConfirmed

	session, err := h.sessions.Create(ctx, booking)
	if err != nil {
		h.logger.Error("failed to create session for booking",
			zap.String("booking_id", booking.ID.String()), zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}

	if student, err := h.users.GetByID(ctx, booking.StudentID); err == nil {
		msg := notify.BookingMessage(student.Locale, models.NotificationTypeBookingConfirmed, booking.Subject, booking.Reference)
		h.dispatcher.Send(ctx, []models.User{*student}, models.NotificationTypeBookingConfirmed,
			msg.Title, msg.Body, map[string]string{
				"booking_id":  booking.ID.String(),
				"booking_ref": booking.Reference,
				"session_id":  session.ID.String(),
			})
	}

	response.OK(c, gin.H{"booking": booking, "session": session})
}

// Cancel cancels a booking and any scheduled sessions created from it.
// Either participant may cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}
	ctx := c.Request.Context()
	booking, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "booking not found")
			return
		}
		h.logger.Error("failed to fetch booking", zap.Error(err))
		response.Internal(c, "failed to fetch booking")
		return
	}
	userID := middleware.UserID(c)
	if booking.StudentID != userID && booking.TeacherID != userID {
		response.Forbidden(c, "not your booking")
		return
	}

	won, err := h.repo.Cancel(ctx, id)
	if err != nil {
		h.logger.Error("failed to cancel booking", zap.Error(err))
		response.Internal(c, "failed to cancel booking")
		return
	}
	if !won {
		response.Conflict(c, "booking already cancelled")
		return
	}
	if err := h.sessions.CancelByBooking(ctx, id); err != nil {
		h.logger.Error("failed to cancel sessions for booking",
			zap.String("booking_id", id.String()), zap.Error(err))
	}
	booking.Status = models.BookingStatusCancelled

	// Tell the other party.
	otherID := booking.StudentID
	if userID == booking.StudentID {
		otherID = booking.TeacherID
	}
	if other, err := h.users.GetByID(ctx, otherID); err == nil {
		msg := notify.BookingMessage(other.Locale, models.NotificationTypeBookingCancelled, booking.Subject, booking.Reference)
		h.dispatcher.Send(ctx, []models.User{*other}, models.NotificationTypeBookingCancelled,
			msg.Title, msg.Body, map[string]string{"booking_id": booking.ID.String(), "booking_ref": booking.Reference})
	}

	response.OK(c, booking)
}

// List returns the authenticated user's bookings.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		response.Internal(c, "failed to list bookings")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	response.OK(c, list)
}
