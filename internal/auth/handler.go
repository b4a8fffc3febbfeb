package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/response"
	"github.com/eventmarket/backend/pkg/utils"
)

// UserStore is the persistence used by the auth handler.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, p CreateUserParams) (*models.User, error)
	List(ctx context.Context) ([]models.UserPublic, error)
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role"` // client (default) or provider
	// Provider profile, required when role is provider.
	ProviderName string   `json:"providerName"`
	City         string   `json:"city"`
	BasePrice    *float64 `json:"basePrice"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   UserStore
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo UserStore, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register. Admins are never self-registered.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleClient
	if req.Role != "" {
		parsed, ok := models.ParseRole(req.Role)
		if !ok || parsed == models.RoleAdmin {
			response.BadRequest(c, "invalid role")
			return
		}
		role = parsed
	}

	params := CreateUserParams{
		Email:    strings.TrimSpace(req.Email),
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
	}
	if role == models.RoleProvider {
		name := strings.TrimSpace(req.ProviderName)
		if name == "" {
			name = params.FullName
		}
		if strings.TrimSpace(req.City) == "" {
			response.BadRequest(c, "city is required for providers")
			return
		}
		if req.BasePrice != nil && *req.BasePrice < 0 {
			response.BadRequest(c, "basePrice must be >= 0")
			return
		}
		params.Provider = &models.Provider{Name: name, City: strings.TrimSpace(req.City), BasePrice: req.BasePrice}
	}

	_, err := h.repo.GetByEmail(c.Request.Context(), params.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}
	if !apperr.Is(err, apperr.NotFound) {
		response.Error(c, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	params.PasswordHash = hash

	user, err := h.repo.Create(c.Request.Context(), params)
	if err != nil {
		if apperr.Is(err, apperr.Conflict) {
			response.BadRequest(c, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// List handles GET /users (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
