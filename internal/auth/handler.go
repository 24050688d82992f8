package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/pkg/phone"
	"github.com/darisni/backend/pkg/response"
)

// Handler serves authentication endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=teacher student"`
	Locale   string `json:"locale" binding:"omitempty,oneof=ar en"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	normalized := ""
	if req.Phone != "" {
		var ok bool
		normalized, ok = phone.Normalize(req.Phone)
		if !ok {
			response.BadRequest(c, "phone must be a valid Saudi mobile number")
			return
		}
	}
	locale := req.Locale
	if locale == "" {
		locale = models.LocaleArabic
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, string(hash), req.FullName, normalized, models.Role(req.Role), locale)
	if err != nil {
		h.logger.Warn("failed to create user", zap.String("email", req.Email), zap.Error(err))
		response.Conflict(c, "email already registered")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, authResponse{Token: token, User: user.ToPublic()})
}

// Login authenticates a user and returns a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("failed to fetch user", zap.Error(err))
		}
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, authResponse{Token: token, User: user.ToPublic()})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	idVal, ok := c.Get("user_id")
	id, _ := idVal.(uuid.UUID)
	if !ok || id == uuid.Nil {
		response.Unauthorized(c, "missing user context")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// ListTeachers returns all teacher accounts.
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.repo.ListTeachers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list teachers", zap.Error(err))
		response.Internal(c, "failed to list teachers")
		return
	}
	response.OK(c, teachers)
}
