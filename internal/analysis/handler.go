package analysis

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/pkg/response"
)

// Handler serves the analysis endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an analysis handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

// Budget handles GET /events/:eventId/budget-analysis.
func (h *Handler) Budget(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	b, err := h.svc.Budget(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// Gaps handles GET /events/:eventId/gaps-analysis.
func (h *Handler) Gaps(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	gaps, err := h.svc.Gaps(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gaps)
}

// RecommendedNeeds handles GET /events/:eventId/recommended-needs?limit=.
func (h *Handler) RecommendedNeeds(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	limit := DefaultRecommendLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := h.svc.RecommendedNeeds(c.Request.Context(), middleware.Actor(c), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
