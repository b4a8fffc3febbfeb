package invitations

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// AutoInviteRequest is the body for POST /events/:eventId/needs/:needId/auto-invite.
type AutoInviteRequest struct {
	Strategy string `json:"strategy"` // all | top (default)
	Limit    int    `json:"limit"`
}

// CreateRequest is the body for POST /events/:eventId/invitations.
type CreateRequest struct {
	ProviderID      *string  `json:"providerId" binding:"omitempty,uuid"`
	ProviderGroupID *string  `json:"providerGroupId" binding:"omitempty,uuid"`
	NeedID          *string  `json:"needId" binding:"omitempty,uuid"`
	RoleHint        string   `json:"roleHint"`
	Message         string   `json:"message"`
	ProposedBudget  *float64 `json:"proposedBudget"`
	ReplyDeadline   *string  `json:"replyDeadline"` // RFC3339
}

// RespondRequest is the body for POST /invitations/:id/respond.
type RespondRequest struct {
	Status string `json:"status" binding:"required,oneof=ACCEPTED DECLINED"`
}

// Handler handles invitation HTTP endpoints.
type Handler struct {
	svc          *Service
	orchestrator *Orchestrator
}

// NewHandler creates an invitations handler.
func NewHandler(svc *Service, orchestrator *Orchestrator) *Handler {
	return &Handler{svc: svc, orchestrator: orchestrator}
}

func param(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s) // validated by binding
	return &id
}

// AutoInvite handles POST /events/:eventId/needs/:needId/auto-invite.
func (h *Handler) AutoInvite(c *gin.Context) {
	eventID, ok := param(c, "eventId")
	if !ok {
		return
	}
	needID, ok := param(c, "needId")
	if !ok {
		return
	}
	var req AutoInviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	res, err := h.orchestrator.AutoInvite(c.Request.Context(), middleware.Actor(c), eventID, needID, req.Strategy, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Create handles POST /events/:eventId/invitations.
func (h *Handler) Create(c *gin.Context) {
	eventID, ok := param(c, "eventId")
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := CreateInput{
		ProviderID:      optionalUUID(req.ProviderID),
		ProviderGroupID: optionalUUID(req.ProviderGroupID),
		NeedID:          optionalUUID(req.NeedID),
		RoleHint:        req.RoleHint,
		Message:         req.Message,
		ProposedBudget:  req.ProposedBudget,
	}
	if req.ReplyDeadline != nil && *req.ReplyDeadline != "" {
		t, err := time.Parse(time.RFC3339, *req.ReplyDeadline)
		if err != nil {
			response.BadRequest(c, "invalid replyDeadline")
			return
		}
		in.ReplyDeadline = &t
	}
	inv, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), eventID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inv)
}

// ListByEvent handles GET /events/:eventId/invitations.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, ok := param(c, "eventId")
	if !ok {
		return
	}
	list, err := h.svc.ListByEvent(c.Request.Context(), middleware.Actor(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.EventInvitation{}
	}
	response.OK(c, list)
}

// ListMine handles GET /invitations/mine.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.EventInvitation{}
	}
	response.OK(c, list)
}

// Respond handles POST /invitations/:id/respond.
func (h *Handler) Respond(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	inv, err := h.svc.Respond(c.Request.Context(), middleware.Actor(c), id, models.InvitationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// Cancel handles POST /events/:eventId/invitations/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	eventID, ok := param(c, "eventId")
	if !ok {
		return
	}
	id, ok := param(c, "id")
	if !ok {
		return
	}
	inv, err := h.svc.Cancel(c.Request.Context(), middleware.Actor(c), eventID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}
