// Package offers manages provider offers and the acceptance cascade that locks a need.
package offers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/notify"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Store is the offer persistence used by Service.
type Store interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*models.EventOffer, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventOffer, error)
	Create(ctx context.Context, o *models.EventOffer) error
	Revise(ctx context.Context, o *models.EventOffer, expectedVersion int) error
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the row-locking work done inside the acceptance transaction.
type Tx interface {
	// LockNeed takes the need's row lock and reports whether it is already locked.
	LockNeed(ctx context.Context, needID uuid.UUID) (bool, error)
	GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*models.EventOffer, error)
	// UpdateOfferStatus sets status and bumps the version; a version mismatch is Conflict.
	UpdateOfferStatus(ctx context.Context, id uuid.UUID, status models.OfferStatus, expectedVersion int) (int, error)
	LockSiblingOffers(ctx context.Context, eventID, needID, exceptID uuid.UUID) (int64, error)
	// MarkNeedLocked flips locked from false to true; a need already locked is Conflict.
	MarkNeedLocked(ctx context.Context, needID uuid.UUID) error
}

// EventReader loads events for ownership checks.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// NeedReader loads a need scoped to its event.
type NeedReader interface {
	Get(ctx context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error)
}

// InvitationReader loads invitations offers respond to.
type InvitationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventInvitation, error)
}

// GroupSource resolves the provider groups a provider belongs to.
type GroupSource interface {
	GroupIDs(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error)
}

// Service implements offer use cases.
type Service struct {
	store       Store
	events      EventReader
	needs       NeedReader
	invitations InvitationReader
	groups      GroupSource
	notifier    notify.Notifier
	files       Attachments
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates an offer service.
func NewService(store Store, events EventReader, needs NeedReader, invitations InvitationReader, groups GroupSource,
	notifier notify.Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		events:      events,
		needs:       needs,
		invitations: invitations,
		groups:      groups,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateInput holds a new offer.
type CreateInput struct {
	InvitationID *uuid.UUID
	NeedID       *uuid.UUID
	TotalCost    float64
	Currency     string
	Details      json.RawMessage
	// Draft keeps the offer unsent.
	Draft bool
}

func (s *Service) checkNeedOpen(ctx context.Context, eventID, needID uuid.UUID) error {
	need, err := s.needs.Get(ctx, eventID, needID)
	if err != nil {
		return err
	}
	if need.Locked {
		return apperr.BadRequestf("need is locked")
	}
	if need.OffersDeadline != nil && s.now().After(*need.OffersDeadline) {
		return apperr.BadRequestf("offers deadline has passed")
	}
	return nil
}

func (s *Service) invitedProvider(ctx context.Context, actor access.Actor, inv *models.EventInvitation) error {
	if actor.IsAdmin() || (inv.ProviderID != nil && *inv.ProviderID == actor.UserID) {
		return nil
	}
	if inv.ProviderGroupID != nil {
		groups, err := s.groups.GroupIDs(ctx, actor.UserID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if g == *inv.ProviderGroupID {
				return nil
			}
		}
	}
	return apperr.Forbiddenf("invitation is not addressed to you")
}

// Create records a provider's offer. The need comes from the input or the invitation.
func (s *Service) Create(ctx context.Context, actor access.Actor, eventID uuid.UUID, in CreateInput) (*models.EventOffer, error) {
	if err := access.RequireProvider(actor); err != nil {
		return nil, err
	}
	if in.TotalCost < 0 {
		return nil, apperr.BadRequestf("totalCost must be >= 0")
	}
	if len(in.Details) > 0 && !json.Valid(in.Details) {
		return nil, apperr.BadRequestf("detailsJson must be valid JSON")
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status.Terminal() {
		return nil, apperr.BadRequestf("event is %s", event.Status)
	}

	needID := in.NeedID
	if in.InvitationID != nil {
		inv, err := s.invitations.GetByID(ctx, *in.InvitationID)
		if err != nil {
			return nil, err
		}
		if inv.EventID != eventID {
			return nil, apperr.NotFoundf("invitation not found")
		}
		if err := s.invitedProvider(ctx, actor, inv); err != nil {
			return nil, err
		}
		switch inv.Status {
		case models.InvitationDeclined, models.InvitationCancelled, models.InvitationExpired:
			return nil, apperr.BadRequestf("invitation is %s", inv.Status)
		}
		if needID == nil {
			needID = inv.NeedID
		} else if inv.NeedID != nil && *inv.NeedID != *needID {
			return nil, apperr.BadRequestf("needId does not match the invitation")
		}
	}
	if needID != nil {
		if err := s.checkNeedOpen(ctx, eventID, *needID); err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = event.Currency
	}
	status := models.OfferSent
	if in.Draft {
		status = models.OfferDraft
	}
	o := &models.EventOffer{
		EventID:      eventID,
		InvitationID: in.InvitationID,
		ProviderID:   actor.UserID,
		NeedID:       in.NeedID,
		TotalCost:    in.TotalCost,
		Currency:     currency,
		Status:       status,
		DetailsJSON:  in.Details,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	if o.NeedID == nil && needID != nil {
		o.InvitationNeedID = needID
	}

	if status == models.OfferSent {
		s.notifier.Notify(ctx, models.Notification{
			UserID: event.ClientID,
			Type:   models.NotificationOfferReceived,
			Title:  "New offer received",
			Body:   fmt.Sprintf("%.2f %s for %s", o.TotalCost, o.Currency, event.Title),
			Meta:   map[string]interface{}{"eventId": eventID.String(), "offerId": o.ID.String()},
		})
	}
	return o, nil
}

// List returns the offers of a managed event.
func (s *Service) List(ctx context.Context, actor access.Actor, eventID uuid.UUID) ([]models.EventOffer, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, event); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// offerInEvent loads an offer and hides offers of other events.
func (s *Service) offerInEvent(ctx context.Context, eventID, offerID uuid.UUID) (*models.EventOffer, error) {
	o, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.EventID != eventID {
		return nil, apperr.NotFoundf("offer not found")
	}
	return o, nil
}

// ReviseInput holds a revision. Nil fields keep the current value.
type ReviseInput struct {
	TotalCost *float64
	Currency  string
	Details   json.RawMessage
}

// Revise changes a provider's open offer. Sent offers become REVISED; drafts stay drafts.
func (s *Service) Revise(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID, in ReviseInput) (*models.EventOffer, error) {
	o, err := s.offerInEvent(ctx, eventID, offerID)
	if err != nil {
		return nil, err
	}
	if err := access.IsOfferProvider(actor, o); err != nil {
		return nil, err
	}
	next := models.OfferRevised
	if o.Status == models.OfferDraft {
		next = models.OfferDraft
	} else if !o.Status.CanTransitionTo(models.OfferRevised) {
		return nil, apperr.BadRequestf("offer is %s", o.Status)
	}
	if needID := o.ResolvedNeedID(); needID != nil {
		if err := s.checkNeedOpen(ctx, eventID, *needID); err != nil {
			return nil, err
		}
	}
	if in.TotalCost != nil {
		if *in.TotalCost < 0 {
			return nil, apperr.BadRequestf("totalCost must be >= 0")
		}
		o.TotalCost = *in.TotalCost
	}
	if c := strings.ToUpper(strings.TrimSpace(in.Currency)); c != "" {
		o.Currency = c
	}
	if len(in.Details) > 0 {
		if !json.Valid(in.Details) {
			return nil, apperr.BadRequestf("detailsJson must be valid JSON")
		}
		o.DetailsJSON = in.Details
	}
	o.Status = next
	if err := s.store.Revise(ctx, o, o.Version); err != nil {
		return nil, err
	}
	return o, nil
}

// SetStatus applies a status change requested through the API. Client decisions go through
// the acceptance cascade; provider moves are checked against the offer lifecycle.
func (s *Service) SetStatus(ctx context.Context, actor access.Actor, eventID, offerID uuid.UUID, status models.OfferStatus) (*models.EventOffer, error) {
	if !status.Valid() {
		return nil, apperr.BadRequestf("invalid status %q", status)
	}
	if status == models.OfferLocked {
		return nil, apperr.BadRequestf("LOCKED cannot be set directly")
	}
	o, err := s.offerInEvent(ctx, eventID, offerID)
	if err != nil {
		return nil, err
	}
	if status.IsDecision() {
		return s.Decide(ctx, actor, offerID, status)
	}

	if err := access.IsOfferProvider(actor, o); err != nil {
		return nil, err
	}
	if status == models.OfferSent || status == models.OfferRevised {
		if needID := o.ResolvedNeedID(); needID != nil {
			if err := s.checkNeedOpen(ctx, eventID, *needID); err != nil {
				return nil, err
			}
		}
	}
	return s.transition(ctx, offerID, status)
}

// transition moves an offer to status without cascading.
func (s *Service) transition(ctx context.Context, offerID uuid.UUID, status models.OfferStatus) (*models.EventOffer, error) {
	var updated *models.EventOffer
	err := s.store.InTx(ctx, func(tx Tx) error {
		cur, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if cur.Status == models.OfferLocked {
			return apperr.Conflictf("offer is locked")
		}
		if !cur.Status.CanTransitionTo(status) {
			return apperr.BadRequestf("cannot move offer from %s to %s", cur.Status, status)
		}
		version, err := tx.UpdateOfferStatus(ctx, offerID, status, cur.Version)
		if err != nil {
			return err
		}
		cur.Status = status
		cur.Version = version
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
