package assignments

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// CreateRequest is the body for POST /events/:eventId/assignments.
type CreateRequest struct {
	ProviderID      *string `json:"providerId" binding:"omitempty,uuid"`
	ProviderGroupID *string `json:"providerGroupId" binding:"omitempty,uuid"`
	Status          string  `json:"status"`
	SourceOfferID   *string `json:"sourceOfferId" binding:"omitempty,uuid"`
}

// UpdateRequest is the body for PATCH /events/:eventId/assignments/:id.
type UpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler handles assignment HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an assignments handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}

// Create handles POST /events/:eventId/assignments.
func (h *Handler) Create(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), eventID, CreateInput{
		ProviderID:      optionalUUID(req.ProviderID),
		ProviderGroupID: optionalUUID(req.ProviderGroupID),
		Status:          models.AssignmentStatus(req.Status),
		SourceOfferID:   optionalUUID(req.SourceOfferID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// List handles GET /events/:eventId/assignments.
func (h *Handler) List(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.svc.List(c.Request.Context(), middleware.Actor(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.EventProviderAssignment{}
	}
	response.OK(c, list)
}

// Update handles PATCH /events/:eventId/assignments/:id.
func (h *Handler) Update(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid assignment id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.svc.Advance(c.Request.Context(), middleware.Actor(c), eventID, id, models.AssignmentStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}
