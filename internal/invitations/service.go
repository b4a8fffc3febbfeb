// Package invitations manages invitations sent to providers, including auto-invite.
package invitations

import (
	"context"
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

// Store is the invitation persistence used by Service.
type Store interface {
	Create(ctx context.Context, i *models.EventInvitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventInvitation, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventInvitation, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID, groupIDs []uuid.UUID) ([]models.EventInvitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.InvitationStatus) error
}

// GroupSource resolves the provider groups a provider belongs to.
type GroupSource interface {
	GroupIDs(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error)
}

// Service implements manual invitation use cases.
type Service struct {
	store    Store
	events   EventReader
	needs    NeedReader
	groups   GroupSource
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an invitation service.
func NewService(store Store, events EventReader, needs NeedReader, groups GroupSource, notifier notify.Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, needs: needs, groups: groups, notifier: notifier, logger: logger, now: time.Now}
}

// CreateInput holds a manual invitation. Exactly one of ProviderID and ProviderGroupID is set.
type CreateInput struct {
	ProviderID      *uuid.UUID
	ProviderGroupID *uuid.UUID
	NeedID          *uuid.UUID
	RoleHint        string
	Message         string
	ProposedBudget  *float64
	ReplyDeadline   *time.Time
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

// Create invites one provider or provider group to an event.
func (s *Service) Create(ctx context.Context, actor access.Actor, eventID uuid.UUID, in CreateInput) (*models.EventInvitation, error) {
	if (in.ProviderID == nil) == (in.ProviderGroupID == nil) {
		return nil, apperr.BadRequestf("exactly one of providerId and providerGroupId is required")
	}
	if in.ProposedBudget != nil && *in.ProposedBudget < 0 {
		return nil, apperr.BadRequestf("proposedBudget must be >= 0")
	}
	e, err := s.managedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return nil, apperr.BadRequestf("event is %s", e.Status)
	}

	inv := &models.EventInvitation{
		EventID:         eventID,
		ClientID:        e.ClientID,
		ProviderID:      in.ProviderID,
		ProviderGroupID: in.ProviderGroupID,
		RoleHint:        strings.TrimSpace(in.RoleHint),
		Message:         in.Message,
		Status:          models.InvitationPending,
		ProposedBudget:  in.ProposedBudget,
		BudgetCurrency:  e.Currency,
		ReplyDeadline:   in.ReplyDeadline,
	}
	if in.NeedID != nil {
		need, err := s.needs.Get(ctx, eventID, *in.NeedID)
		if err != nil {
			return nil, err
		}
		if need.Locked {
			return nil, apperr.BadRequestf("need is locked")
		}
		inv.NeedID = &need.ID
		if inv.RoleHint == "" {
			inv.RoleHint = need.Label
		}
		if inv.ProposedBudget == nil {
			inv.ProposedBudget = need.BudgetPlanned
		}
	}
	if err := s.store.Create(ctx, inv); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Conflictf("provider already invited for this need")
		}
		return nil, err
	}

	if inv.ProviderID != nil {
		s.notifier.Notify(ctx, models.Notification{
			UserID: *inv.ProviderID,
			Type:   models.NotificationInvitation,
			Title:  "New invitation",
			Body:   fmt.Sprintf("You are invited to quote for %s", e.Title),
			Meta:   map[string]interface{}{"eventId": eventID.String(), "invitationId": inv.ID.String()},
		})
	}
	return inv, nil
}

// ListByEvent returns the invitations of a managed event.
func (s *Service) ListByEvent(ctx context.Context, actor access.Actor, eventID uuid.UUID) ([]models.EventInvitation, error) {
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

// ListMine returns invitations addressed to the calling provider or its groups.
func (s *Service) ListMine(ctx context.Context, actor access.Actor) ([]models.EventInvitation, error) {
	if err := access.RequireProvider(actor); err != nil {
		return nil, err
	}
	groups, err := s.groups.GroupIDs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.store.ListForProvider(ctx, actor.UserID, groups)
}

func (s *Service) addressedTo(ctx context.Context, actor access.Actor, inv *models.EventInvitation) error {
	if actor.IsAdmin() {
		return nil
	}
	if inv.ProviderID != nil && *inv.ProviderID == actor.UserID {
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

// Respond records the provider's answer. An answer after the reply deadline expires the invitation.
func (s *Service) Respond(ctx context.Context, actor access.Actor, id uuid.UUID, answer models.InvitationStatus) (*models.EventInvitation, error) {
	if answer != models.InvitationAccepted && answer != models.InvitationDeclined {
		return nil, apperr.BadRequestf("response must be ACCEPTED or DECLINED")
	}
	if err := access.RequireProvider(actor); err != nil {
		return nil, err
	}
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.addressedTo(ctx, actor, inv); err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationPending {
		return nil, apperr.BadRequestf("invitation is %s", inv.Status)
	}
	if inv.Expired(s.now()) {
		if err := s.store.UpdateStatus(ctx, id, models.InvitationPending, models.InvitationExpired); err != nil {
			s.logger.Warn("expire invitation", zap.String("invitation_id", id.String()), zap.Error(err))
		}
		return nil, apperr.BadRequestf("invitation has expired")
	}
	if err := s.store.UpdateStatus(ctx, id, models.InvitationPending, answer); err != nil {
		return nil, err
	}
	inv.Status = answer

	s.notifier.Notify(ctx, models.Notification{
		UserID: inv.ClientID,
		Type:   models.NotificationInvitationReply,
		Title:  "Invitation " + strings.ToLower(string(answer)),
		Meta:   map[string]interface{}{"eventId": inv.EventID.String(), "invitationId": inv.ID.String(), "status": string(answer)},
	})
	return inv, nil
}

// Cancel withdraws a pending invitation of a managed event.
func (s *Service) Cancel(ctx context.Context, actor access.Actor, eventID, id uuid.UUID) (*models.EventInvitation, error) {
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.EventID != eventID {
		return nil, apperr.NotFoundf("invitation not found")
	}
	if inv.Status != models.InvitationPending {
		return nil, apperr.BadRequestf("invitation is %s", inv.Status)
	}
	if err := s.store.UpdateStatus(ctx, id, models.InvitationPending, models.InvitationCancelled); err != nil {
		return nil, err
	}
	inv.Status = models.InvitationCancelled
	return inv, nil
}
