package notify

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// Store is the notification persistence used by the handler.
type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// Handler serves the caller's notifications.
type Handler struct {
	repo Store
}

// NewHandler creates a notifications handler.
func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /notifications?limit=.
func (h *Handler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			response.BadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	list, err := h.repo.ListByUser(c.Request.Context(), middleware.Actor(c).UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	response.OK(c, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	if err := h.repo.MarkRead(c.Request.Context(), middleware.Actor(c).UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
