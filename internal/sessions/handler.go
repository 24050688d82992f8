package sessions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/darisni/backend/internal/middleware"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/pkg/response"
)

// Handler exposes session read endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a session handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the caller's sessions (as student or teacher).
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	for i := range list {
		redactURLs(&list[i], userID)
	}
	response.OK(c, list)
}

// GetByID returns one session the caller participates in.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	userID := middleware.UserID(c)
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "session not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load session")
		return
	}
	if s.StudentID != userID && s.TeacherID != userID {
		response.Forbidden(c, "not a participant of this session")
		return
	}
	redactURLs(s, userID)
	response.OK(c, s)
}

// redactURLs hides the meeting URL not meant for the caller: students never
// see the host URL, teachers never see the plain join URL.
func redactURLs(s *models.Session, viewer uuid.UUID) {
	if viewer == s.StudentID {
		s.HostURL = nil
	} else if viewer == s.TeacherID {
		s.JoinURL = nil
	}
}
