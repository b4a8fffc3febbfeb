// Package needs manages the services an event requires.
package needs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Store is the need persistence used by Service.
type Store interface {
	Create(ctx context.Context, n *models.EventNeed) error
	Get(ctx context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventNeed, error)
	Update(ctx context.Context, n *models.EventNeed) error
	Delete(ctx context.Context, eventID, needID uuid.UUID) error
}

// EventReader loads events for ownership checks.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Service implements need use cases.
type Service struct {
	store  Store
	events EventReader
}

// NewService creates a need service.
func NewService(store Store, events EventReader) *Service {
	return &Service{store: store, events: events}
}

// Input holds need fields. On update, nil pointers keep the stored value.
type Input struct {
	Label          *string
	CategoryID     *string
	SubcategoryID  *string
	TagID          *string
	BudgetPlanned  *float64
	Priority       *models.Priority
	MustHave       *bool
	OffersDeadline *time.Time
}

func (s *Service) event(ctx context.Context, actor access.Actor, eventID uuid.UUID) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, e); err != nil {
		return nil, err
	}
	return e, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func apply(n *models.EventNeed, in Input) error {
	if in.Label != nil {
		n.Label = strings.TrimSpace(*in.Label)
	}
	if n.Label == "" {
		return apperr.BadRequestf("label is required")
	}
	if in.CategoryID != nil {
		n.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.SubcategoryID != nil {
		n.SubcategoryID = optional(in.SubcategoryID)
	}
	if in.TagID != nil {
		n.TagID = optional(in.TagID)
	}
	if in.BudgetPlanned != nil {
		if *in.BudgetPlanned < 0 {
			return apperr.BadRequestf("budgetPlanned must be >= 0")
		}
		n.BudgetPlanned = in.BudgetPlanned
	}
	if in.Priority != nil {
		p := models.Priority(strings.ToUpper(string(*in.Priority)))
		if !p.Valid() {
			return apperr.BadRequestf("invalid priority %q", *in.Priority)
		}
		n.Priority = p
	}
	if in.MustHave != nil {
		n.MustHave = *in.MustHave
	}
	if in.OffersDeadline != nil {
		n.OffersDeadline = in.OffersDeadline
	}
	return nil
}

// Create adds a need to an event.
func (s *Service) Create(ctx context.Context, actor access.Actor, eventID uuid.UUID, in Input) (*models.EventNeed, error) {
	e, err := s.event(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return nil, apperr.BadRequestf("event is %s", e.Status)
	}
	n := &models.EventNeed{EventID: eventID, Priority: models.PriorityMedium}
	if err := apply(n, in); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the needs of an event.
func (s *Service) List(ctx context.Context, actor access.Actor, eventID uuid.UUID) ([]models.EventNeed, error) {
	if _, err := s.event(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// Update edits a need. Locked needs cannot be edited.
func (s *Service) Update(ctx context.Context, actor access.Actor, eventID, needID uuid.UUID, in Input) (*models.EventNeed, error) {
	if _, err := s.event(ctx, actor, eventID); err != nil {
		return nil, err
	}
	n, err := s.store.Get(ctx, eventID, needID)
	if err != nil {
		return nil, err
	}
	if n.Locked {
		return nil, apperr.BadRequestf("need is locked")
	}
	if err := apply(n, in); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a need. Locked needs cannot be deleted.
func (s *Service) Delete(ctx context.Context, actor access.Actor, eventID, needID uuid.UUID) error {
	if _, err := s.event(ctx, actor, eventID); err != nil {
		return err
	}
	n, err := s.store.Get(ctx, eventID, needID)
	if err != nil {
		return err
	}
	if n.Locked {
		return apperr.BadRequestf("need is locked")
	}
	return s.store.Delete(ctx, eventID, needID)
}
