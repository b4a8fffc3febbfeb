package needs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// Request is the body for POST and PATCH on needs. Omitted fields are left unchanged on PATCH.
type Request struct {
	Label          *string  `json:"label"`
	CategoryID     *string  `json:"categoryId"`
	SubcategoryID  *string  `json:"subcategoryId"`
	TagID          *string  `json:"tagId"`
	BudgetPlanned  *float64 `json:"budgetPlanned"`
	Priority       *string  `json:"priority"`
	MustHave       *bool    `json:"mustHave"`
	OffersDeadline *string  `json:"offersDeadline"` // RFC3339
}

func (r Request) input() (Input, error) {
	in := Input{
		Label:         r.Label,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		TagID:         r.TagID,
		BudgetPlanned: r.BudgetPlanned,
		MustHave:      r.MustHave,
	}
	if r.Priority != nil {
		p := models.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.OffersDeadline != nil && *r.OffersDeadline != "" {
		t, err := time.Parse(time.RFC3339, *r.OffersDeadline)
		if err != nil {
			return Input{}, err
		}
		in.OffersDeadline = &t
	}
	return in, nil
}

// Handler handles need HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a needs handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func ids(c *gin.Context, withNeed bool) (eventID, needID uuid.UUID, ok bool) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, uuid.Nil, false
	}
	if !withNeed {
		return eventID, uuid.Nil, true
	}
	needID, err = uuid.Parse(c.Param("needId"))
	if err != nil {
		response.BadRequest(c, "invalid need id")
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, needID, true
}

func bind(c *gin.Context) (Input, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return Input{}, false
	}
	in, err := req.input()
	if err != nil {
		response.BadRequest(c, "invalid offersDeadline")
		return Input{}, false
	}
	return in, true
}

// Create handles POST /events/:eventId/needs.
func (h *Handler) Create(c *gin.Context) {
	eventID, _, ok := ids(c, false)
	if !ok {
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	n, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), eventID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

// List handles GET /events/:eventId/needs.
func (h *Handler) List(c *gin.Context) {
	eventID, _, ok := ids(c, false)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), middleware.Actor(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.EventNeed{}
	}
	response.OK(c, list)
}

// Update handles PATCH /events/:eventId/needs/:needId.
func (h *Handler) Update(c *gin.Context) {
	eventID, needID, ok := ids(c, true)
	if !ok {
		return
	}
	in, ok := bind(c)
	if !ok {
		return
	}
	n, err := h.svc.Update(c.Request.Context(), middleware.Actor(c), eventID, needID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

// Delete handles DELETE /events/:eventId/needs/:needId.
func (h *Handler) Delete(c *gin.Context) {
	eventID, needID, ok := ids(c, true)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.Actor(c), eventID, needID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
