package providers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// Store is the provider persistence used by the handler.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProviderProfile, error)
	AddUnavailableDate(ctx context.Context, providerID uuid.UUID, date time.Time) error
}

// Handler handles provider profile endpoints.
type Handler struct {
	repo Store
}

// NewHandler creates a providers handler.
func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// Get handles GET /providers/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// UnavailableDateRequest is the body for POST /providers/me/unavailable-dates.
type UnavailableDateRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// AddUnavailableDate handles POST /providers/me/unavailable-dates.
func (h *Handler) AddUnavailableDate(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := access.RequireProvider(actor); err != nil {
		response.Error(c, err)
		return
	}
	var req UnavailableDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	if err := h.repo.AddUnavailableDate(c.Request.Context(), actor.UserID, date); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"providerId": actor.UserID, "date": req.Date})
}
