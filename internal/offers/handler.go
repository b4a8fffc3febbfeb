package offers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// CreateRequest is the body for POST /events/:eventId/offers.
type CreateRequest struct {
	InvitationID *string         `json:"invitationId" binding:"omitempty,uuid"`
	NeedID       *string         `json:"needId" binding:"omitempty,uuid"`
	TotalCost    float64         `json:"totalCost"`
	Currency     string          `json:"currency"`
	DetailsJSON  json.RawMessage `json:"detailsJson"`
	Draft        bool            `json:"draft"`
}

// ReviseRequest is the body for PUT /events/:eventId/offers/:id.
type ReviseRequest struct {
	TotalCost   *float64        `json:"totalCost"`
	Currency    string          `json:"currency"`
	DetailsJSON json.RawMessage `json:"detailsJson"`
}

// StatusRequest is the body for PATCH /events/:eventId/offers/:id.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// DecisionRequest is the body for POST /offers/:id/decision.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// UploadURLRequest is the body for POST /events/:eventId/offers/:id/attachments/upload-url.
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

// Handler handles offer HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an offers handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func param(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+what+" id")
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

func eventAndOffer(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	eventID, ok := param(c, "eventId", "event")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	offerID, ok := param(c, "id", "offer")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, offerID, true
}

// Create handles POST /events/:eventId/offers.
func (h *Handler) Create(c *gin.Context) {
	eventID, ok := param(c, "eventId", "event")
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	o, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), eventID, CreateInput{
		InvitationID: optionalUUID(req.InvitationID),
		NeedID:       optionalUUID(req.NeedID),
		TotalCost:    req.TotalCost,
		Currency:     req.Currency,
		Details:      req.DetailsJSON,
		Draft:        req.Draft,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, o)
}

// List handles GET /events/:eventId/offers.
func (h *Handler) List(c *gin.Context) {
	eventID, ok := param(c, "eventId", "event")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), middleware.Actor(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.EventOffer{}
	}
	response.OK(c, list)
}

// Revise handles PUT /events/:eventId/offers/:id.
func (h *Handler) Revise(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	var req ReviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	o, err := h.svc.Revise(c.Request.Context(), middleware.Actor(c), eventID, offerID, ReviseInput{
		TotalCost: req.TotalCost,
		Currency:  req.Currency,
		Details:   req.DetailsJSON,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

// SetStatus handles PATCH /events/:eventId/offers/:id.
func (h *Handler) SetStatus(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	o, err := h.svc.SetStatus(c.Request.Context(), middleware.Actor(c), eventID, offerID, models.OfferStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

// Decide handles POST /offers/:id/decision.
func (h *Handler) Decide(c *gin.Context) {
	offerID, ok := param(c, "id", "offer")
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	o, err := h.svc.Decide(c.Request.Context(), middleware.Actor(c), offerID, models.OfferStatus(req.Decision))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

// UploadURL handles POST /events/:eventId/offers/:id/attachments/upload-url.
func (h *Handler) UploadURL(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.AttachmentUploadURL(c.Request.Context(), middleware.Actor(c), eventID, offerID,
		req.Filename, req.ContentType, req.FileSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Upload handles POST /events/:eventId/offers/:id/attachments (multipart, field "file").
func (h *Handler) Upload(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	rc, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	res, err := h.svc.UploadAttachment(c.Request.Context(), middleware.Actor(c), eventID, offerID,
		file.Filename, file.Header.Get("Content-Type"), file.Size, rc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// DownloadURL handles GET /events/:eventId/offers/:id/attachments/download-url?key=.
func (h *Handler) DownloadURL(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	key := c.Query("key")
	if key == "" {
		response.BadRequest(c, "key is required")
		return
	}
	res, err := h.svc.AttachmentDownloadURL(c.Request.Context(), middleware.Actor(c), eventID, offerID, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// DeleteAttachment handles DELETE /events/:eventId/offers/:id/attachments?key=.
func (h *Handler) DeleteAttachment(c *gin.Context) {
	eventID, offerID, ok := eventAndOffer(c)
	if !ok {
		return
	}
	key := c.Query("key")
	if key == "" {
		response.BadRequest(c, "key is required")
		return
	}
	if err := h.svc.DeleteAttachment(c.Request.Context(), middleware.Actor(c), eventID, offerID, key); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
