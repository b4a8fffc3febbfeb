// Package events manages client events, their status lifecycle and planning brief.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Store is the event persistence used by Service.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, clientID *uuid.UUID) ([]models.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) error
	GetBrief(ctx context.Context, eventID uuid.UUID) (models.EventBrief, error)
	UpsertBrief(ctx context.Context, b models.EventBrief) error
}

// Service implements event use cases.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an event service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// CreateInput holds the fields of a new event.
type CreateInput struct {
	Title         string
	Type          string
	Date          *time.Time
	City          string
	GuestCount    *int
	BudgetPlanned *float64
	Currency      string
}

// Create creates a DRAFT event owned by the actor.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*models.Event, error) {
	if !actor.Valid() {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}
	if actor.IsProvider() {
		return nil, apperr.Forbiddenf("providers cannot create events")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.BadRequestf("title is required")
	}
	if in.BudgetPlanned != nil && *in.BudgetPlanned < 0 {
		return nil, apperr.BadRequestf("budgetPlanned must be >= 0")
	}
	if in.GuestCount != nil && *in.GuestCount < 0 {
		return nil, apperr.BadRequestf("guestCount must be >= 0")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "EUR"
	}
	e := &models.Event{
		ClientID:      actor.UserID,
		Title:         strings.TrimSpace(in.Title),
		Type:          strings.ToLower(strings.TrimSpace(in.Type)),
		Date:          in.Date,
		City:          strings.TrimSpace(in.City),
		GuestCount:    in.GuestCount,
		BudgetPlanned: in.BudgetPlanned,
		Currency:      currency,
		Status:        models.EventStatusDraft,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns an event the actor may manage.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns the actor's events; admins see all.
func (s *Service) List(ctx context.Context, actor access.Actor) ([]models.Event, error) {
	if !actor.Valid() {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}
	if actor.IsAdmin() {
		return s.store.List(ctx, nil)
	}
	id := actor.UserID
	return s.store.List(ctx, &id)
}

// ChangeStatus applies one lifecycle transition.
func (s *Service) ChangeStatus(ctx context.Context, actor access.Actor, id uuid.UUID, next models.EventStatus) (*models.Event, error) {
	if !next.Valid() {
		return nil, apperr.BadRequestf("invalid status %q", next)
	}
	e, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !e.Status.CanTransitionTo(next) {
		return nil, apperr.BadRequestf("cannot move event from %s to %s", e.Status, next)
	}
	if err := s.store.UpdateStatus(ctx, id, e.Status, next); err != nil {
		return nil, err
	}
	s.logger.Info("event status changed", zap.String("event_id", id.String()),
		zap.String("from", string(e.Status)), zap.String("to", string(next)))
	e.Status = next
	return e, nil
}

// Brief returns the event brief with event fallbacks applied.
func (s *Service) Brief(ctx context.Context, actor access.Actor, id uuid.UUID) (models.EventBrief, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return models.EventBrief{}, err
	}
	return s.store.GetBrief(ctx, id)
}

// BriefInput holds the editable brief fields. Nil fields fall back to the event.
type BriefInput struct {
	City          string
	InitialBudget *float64
	GuestCount    *int
	Notes         string
}

// UpdateBrief stores the brief and returns the resolved brief.
func (s *Service) UpdateBrief(ctx context.Context, actor access.Actor, id uuid.UUID, in BriefInput) (models.EventBrief, error) {
	e, err := s.Get(ctx, actor, id)
	if err != nil {
		return models.EventBrief{}, err
	}
	if e.Status.Terminal() {
		return models.EventBrief{}, apperr.BadRequestf("event is %s", e.Status)
	}
	if in.InitialBudget != nil && *in.InitialBudget < 0 {
		return models.EventBrief{}, apperr.BadRequestf("initialBudget must be >= 0")
	}
	if in.GuestCount != nil && *in.GuestCount < 0 {
		return models.EventBrief{}, apperr.BadRequestf("guestCount must be >= 0")
	}
	b := models.EventBrief{
		EventID:       id,
		City:          strings.TrimSpace(in.City),
		InitialBudget: in.InitialBudget,
		GuestCount:    in.GuestCount,
		Notes:         in.Notes,
	}
	if err := s.store.UpsertBrief(ctx, b); err != nil {
		return models.EventBrief{}, err
	}
	return s.store.GetBrief(ctx, id)
}
