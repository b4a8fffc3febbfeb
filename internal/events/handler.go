package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title         string   `json:"title" binding:"required"`
	Type          string   `json:"type"`
	Date          *string  `json:"date"`
	City          string   `json:"city"`
	GuestCount    *int     `json:"guestCount"`
	BudgetPlanned *float64 `json:"budgetPlanned"`
	Currency      string   `json:"currency"`
}

// StatusRequest is the body for PATCH /events/:eventId/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BriefRequest is the body for PUT /events/:eventId/brief.
type BriefRequest struct {
	City          string   `json:"city"`
	InitialBudget *float64 `json:"initialBudget"`
	GuestCount    *int     `json:"guestCount"`
	Notes         string   `json:"notes"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an events handler.
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

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := CreateInput{
		Title:         req.Title,
		Type:          req.Type,
		City:          req.City,
		GuestCount:    req.GuestCount,
		BudgetPlanned: req.BudgetPlanned,
		Currency:      req.Currency,
	}
	if req.Date != nil && *req.Date != "" {
		d, err := parseDate(*req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		in.Date = &d
	}
	e, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, list)
}

// Get handles GET /events/:eventId.
func (h *Handler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// ChangeStatus handles PATCH /events/:eventId/status.
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.svc.ChangeStatus(c.Request.Context(), middleware.Actor(c), id, models.EventStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// GetBrief handles GET /events/:eventId/brief.
func (h *Handler) GetBrief(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	b, err := h.svc.Brief(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// UpdateBrief handles PUT /events/:eventId/brief.
func (h *Handler) UpdateBrief(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req BriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.svc.UpdateBrief(c.Request.Context(), middleware.Actor(c), id, BriefInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}
