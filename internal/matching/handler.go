package matching

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/scoring"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/response"
)

const defaultMatchLimit = 10

// EventReader loads an event and its brief.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetBrief(ctx context.Context, eventID uuid.UUID) (models.EventBrief, error)
}

// NeedReader loads a need scoped to its event.
type NeedReader interface {
	Get(ctx context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error)
}

// Handler serves provider matches for a need.
type Handler struct {
	events      EventReader
	needs       NeedReader
	matcher     NeedMatcher
	recommender *Recommender
}

// NewHandler creates a matching handler.
func NewHandler(events EventReader, needs NeedReader, matcher NeedMatcher, recommender *Recommender) *Handler {
	return &Handler{events: events, needs: needs, matcher: matcher, recommender: recommender}
}

// Match returns ranked providers for a need using the named scoring mode.
func (h *Handler) Match(ctx context.Context, actor access.Actor, eventID, needID uuid.UUID, mode string, limit int) ([]models.ProviderMatch, error) {
	e, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, e); err != nil {
		return nil, err
	}
	need, err := h.needs.Get(ctx, eventID, needID)
	if err != nil {
		return nil, err
	}
	brief, err := h.events.GetBrief(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	if mode == "" {
		mode = "fast"
	}
	policy, ok := scoring.ByName(mode)
	if !ok {
		return nil, apperr.BadRequestf("unknown mode %q", mode)
	}
	if policy.Name() == "detailed" {
		return h.recommender.Recommend(ctx, *need, brief.MatchContext(), limit)
	}
	matches, err := h.matcher.MatchNeed(ctx, *need, brief.MatchContext())
	if err != nil {
		return nil, err
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// List handles GET /events/:eventId/needs/:needId/matches?mode=fast|detailed&limit=.
func (h *Handler) List(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	needID, err := uuid.Parse(c.Param("needId"))
	if err != nil {
		response.BadRequest(c, "invalid need id")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
	}

	matches, err := h.Match(c.Request.Context(), middleware.Actor(c), eventID, needID, c.Query("mode"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if matches == nil {
		matches = []models.ProviderMatch{}
	}
	response.OK(c, matches)
}
