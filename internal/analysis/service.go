package analysis

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/templates"
)

// EventReader loads an event and its brief.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetBrief(ctx context.Context, eventID uuid.UUID) (models.EventBrief, error)
}

// NeedLister lists an event's needs.
type NeedLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventNeed, error)
}

// InvitationLister lists an event's invitations.
type InvitationLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventInvitation, error)
}

// OfferLister lists an event's offers with their invitation needs resolved.
type OfferLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventOffer, error)
}

// Service loads event data and runs the analyzers on it.
type Service struct {
	events      EventReader
	needs       NeedLister
	invitations InvitationLister
	offers      OfferLister
	weights     templates.Weights
	recommender *NeedsRecommender
}

// NewService creates an analysis service.
func NewService(events EventReader, needs NeedLister, invitations InvitationLister, offers OfferLister,
	weights templates.Weights, recommender *NeedsRecommender) *Service {
	if weights == nil {
		weights = templates.Default()
	}
	if recommender == nil {
		recommender = NewNeedsRecommender(nil, nil)
	}
	return &Service{
		events:      events,
		needs:       needs,
		invitations: invitations,
		offers:      offers,
		weights:     weights,
		recommender: recommender,
	}
}

func (s *Service) brief(ctx context.Context, actor access.Actor, eventID uuid.UUID) (models.EventBrief, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return models.EventBrief{}, err
	}
	if err := access.CanManageEvent(actor, e); err != nil {
		return models.EventBrief{}, err
	}
	return s.events.GetBrief(ctx, eventID)
}

// Budget returns the budget analysis of a managed event.
func (s *Service) Budget(ctx context.Context, actor access.Actor, eventID uuid.UUID) (Budget, error) {
	brief, err := s.brief(ctx, actor, eventID)
	if err != nil {
		return Budget{}, err
	}
	needs, err := s.needs.ListByEvent(ctx, eventID)
	if err != nil {
		return Budget{}, err
	}
	offers, err := s.offers.ListByEvent(ctx, eventID)
	if err != nil {
		return Budget{}, err
	}
	return ComputeBudget(brief, s.weights.For(brief.EventType), needs, offers), nil
}

// Gaps returns the coverage of every need of a managed event.
func (s *Service) Gaps(ctx context.Context, actor access.Actor, eventID uuid.UUID) ([]NeedGap, error) {
	if _, err := s.brief(ctx, actor, eventID); err != nil {
		return nil, err
	}
	needs, err := s.needs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	invitations, err := s.invitations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return ComputeGaps(needs, invitations, offers), nil
}

// RecommendedNeeds suggests categories the managed event does not cover yet.
func (s *Service) RecommendedNeeds(ctx context.Context, actor access.Actor, eventID uuid.UUID, limit int) ([]NeedSuggestion, error) {
	brief, err := s.brief(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	needs, err := s.needs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.recommender.RecommendNeeds(ctx, brief, s.weights.For(brief.EventType), needs, limit), nil
}
