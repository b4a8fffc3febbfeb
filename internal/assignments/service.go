// Package assignments binds providers to events and tracks their progress toward contract.
package assignments

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Store is the assignment persistence used by Service.
type Store interface {
	Create(ctx context.Context, a *models.EventProviderAssignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventProviderAssignment, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventProviderAssignment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AssignmentStatus) (*models.EventProviderAssignment, error)
}

// EventReader loads events for ownership checks.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// OfferReader loads the offer an assignment is created from.
type OfferReader interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*models.EventOffer, error)
}

// Service implements assignment use cases.
type Service struct {
	store  Store
	events EventReader
	offers OfferReader
	logger *zap.Logger
}

// NewService creates an assignment service.
func NewService(store Store, events EventReader, offers OfferReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, offers: offers, logger: logger}
}

// CreateInput holds a new assignment. Exactly one of ProviderID and ProviderGroupID is set.
type CreateInput struct {
	ProviderID      *uuid.UUID
	ProviderGroupID *uuid.UUID
	Status          models.AssignmentStatus
	SourceOfferID   *uuid.UUID
}

func (s *Service) managedEvent(ctx context.Context, actor access.Actor, eventID uuid.UUID) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Create assigns a provider or group to a managed event.
func (s *Service) Create(ctx context.Context, actor access.Actor, eventID uuid.UUID, in CreateInput) (*models.EventProviderAssignment, error) {
	if (in.ProviderID == nil) == (in.ProviderGroupID == nil) {
		return nil, apperr.BadRequestf("exactly one of providerId and providerGroupId is required")
	}
	status := in.Status
	if status == "" {
		status = models.AssignmentShortlisted
	}
	if status.Rank() == 0 {
		return nil, apperr.BadRequestf("invalid status %q", in.Status)
	}
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	if in.SourceOfferID != nil {
		o, err := s.offers.GetOffer(ctx, *in.SourceOfferID)
		if err != nil {
			return nil, err
		}
		if o.EventID != eventID {
			return nil, apperr.NotFoundf("offer not found")
		}
		// ACCEPTED is admitted next to ACCEPTED_BY_CLIENT: both are the winning offer of a need.
		if o.Status != models.OfferSent && !o.Status.IsAccepted() {
			return nil, apperr.BadRequestf("offer is %s", o.Status)
		}
		if in.ProviderID != nil && *in.ProviderID != o.ProviderID {
			return nil, apperr.BadRequestf("providerId does not match the offer")
		}
	}

	a := &models.EventProviderAssignment{
		EventID:         eventID,
		ProviderID:      in.ProviderID,
		ProviderGroupID: in.ProviderGroupID,
		Status:          status,
		SourceOfferID:   in.SourceOfferID,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("provider assigned",
		zap.String("event_id", eventID.String()),
		zap.String("assignment_id", a.ID.String()),
		zap.String("status", string(a.Status)),
	)
	return a, nil
}

// List returns a managed event's assignments.
func (s *Service) List(ctx context.Context, actor access.Actor, eventID uuid.UUID) ([]models.EventProviderAssignment, error) {
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// Advance moves an assignment strictly forward: SHORTLISTED, SELECTED, CONFIRMED_PRE_CONTRACT.
func (s *Service) Advance(ctx context.Context, actor access.Actor, eventID, id uuid.UUID, to models.AssignmentStatus) (*models.EventProviderAssignment, error) {
	if to.Rank() == 0 {
		return nil, apperr.BadRequestf("invalid status %q", to)
	}
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.EventID != eventID {
		return nil, apperr.NotFoundf("assignment not found")
	}
	if to.Rank() <= a.Status.Rank() {
		return nil, apperr.BadRequestf("cannot move assignment from %s to %s", a.Status, to)
	}
	return s.store.UpdateStatus(ctx, id, a.Status, to)
}
