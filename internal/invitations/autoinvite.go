package invitations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/matching"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/notify"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Auto-invite strategies.
const (
	StrategyAll = "all"
	StrategyTop = "top"
)

// EventReader loads an event and its brief.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetBrief(ctx context.Context, eventID uuid.UUID) (models.EventBrief, error)
}

// NeedReader loads a need scoped to its event.
type NeedReader interface {
	Get(ctx context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error)
}

// BulkStore is the invitation persistence used by auto-invite.
type BulkStore interface {
	InvitedProviderIDs(ctx context.Context, eventID, needID uuid.UUID) ([]uuid.UUID, error)
	BulkCreate(ctx context.Context, tmpl models.EventInvitation, providerIDs []uuid.UUID) ([]models.EventInvitation, error)
}

// Result summarizes one auto-invite run.
type Result struct {
	CreatedCount    int `json:"createdCount"`
	SkippedCount    int `json:"skippedCount"`
	TotalCandidates int `json:"totalCandidates"`
}

// Orchestrator turns matched providers into invitations for a need.
type Orchestrator struct {
	events       EventReader
	needs        NeedReader
	matcher      matching.NeedMatcher
	store        BulkStore
	notifier     notify.Notifier
	defaultLimit int
	logger       *zap.Logger
}

// NewOrchestrator creates an auto-invite orchestrator. defaultLimit applies to the top strategy.
func NewOrchestrator(events EventReader, needs NeedReader, matcher matching.NeedMatcher, store BulkStore,
	notifier notify.Notifier, defaultLimit int, logger *zap.Logger) *Orchestrator {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLimit < 1 {
		defaultLimit = 5
	}
	return &Orchestrator{
		events:       events,
		needs:        needs,
		matcher:      matcher,
		store:        store,
		notifier:     notifier,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// AutoInvite invites matched providers for the need. Providers already invited for the
// (event, need) pair are skipped; no candidates is a normal, empty result.
func (o *Orchestrator) AutoInvite(ctx context.Context, actor access.Actor, eventID, needID uuid.UUID, strategy string, limit int) (Result, error) {
	switch strategy {
	case "":
		strategy = StrategyTop
	case StrategyAll, StrategyTop:
	default:
		return Result{}, apperr.BadRequestf("unknown strategy %q", strategy)
	}

	need, err := o.needs.Get(ctx, eventID, needID)
	if err != nil {
		return Result{}, err
	}
	event, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if err := access.CanManageEvent(actor, event); err != nil {
		return Result{}, err
	}
	if need.Locked {
		return Result{}, apperr.BadRequestf("need is locked")
	}
	brief, err := o.events.GetBrief(ctx, eventID)
	if err != nil {
		return Result{}, err
	}

	candidates, err := o.matcher.MatchNeed(ctx, *need, brief.MatchContext())
	if err != nil {
		return Result{}, fmt.Errorf("match need: %w", err)
	}
	res := Result{TotalCandidates: len(candidates)}

	if strategy == StrategyTop {
		if limit < 1 {
			limit = o.defaultLimit
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
	}

	invited, err := o.store.InvitedProviderIDs(ctx, eventID, needID)
	if err != nil {
		return Result{}, err
	}
	seen := make(map[uuid.UUID]struct{}, len(invited)+len(candidates))
	for _, id := range invited {
		seen[id] = struct{}{}
	}
	toInvite := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ProviderID]; dup {
			res.SkippedCount++
			continue
		}
		seen[c.ProviderID] = struct{}{}
		toInvite = append(toInvite, c.ProviderID)
	}
	if len(toInvite) == 0 {
		return res, nil
	}

	tmpl := models.EventInvitation{
		EventID:        eventID,
		ClientID:       event.ClientID,
		NeedID:         &need.ID,
		RoleHint:       need.Label,
		ProposedBudget: need.BudgetPlanned,
		BudgetCurrency: event.Currency,
		ReplyDeadline:  need.OffersDeadline,
	}
	created, err := o.store.BulkCreate(ctx, tmpl, toInvite)
	if err != nil {
		return Result{}, err
	}
	res.CreatedCount = len(created)
	// concurrent runs may have inserted some rows first
	res.SkippedCount += len(toInvite) - len(created)

	for _, inv := range created {
		if inv.ProviderID == nil {
			continue
		}
		o.notifier.Notify(ctx, models.Notification{
			UserID: *inv.ProviderID,
			Type:   models.NotificationInvitation,
			Title:  "New invitation",
			Body:   fmt.Sprintf("You are invited to quote for %s", need.Label),
			Meta:   map[string]interface{}{"eventId": eventID.String(), "needId": needID.String(), "invitationId": inv.ID.String()},
		})
	}
	o.logger.Info("auto-invite",
		zap.String("event_id", eventID.String()), zap.String("need_id", needID.String()), zap.String("strategy", strategy),
		zap.Int("created", res.CreatedCount), zap.Int("skipped", res.SkippedCount), zap.Int("candidates", res.TotalCandidates))
	return res, nil
}
