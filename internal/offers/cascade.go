package offers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Decide applies a client decision to an offer. Accepting an offer tied to a need
// locks every other offer on that need and the need itself, all in one transaction.
// Of two concurrent accepts on the same need exactly one commits; the other gets Conflict.
func (s *Service) Decide(ctx context.Context, actor access.Actor, offerID uuid.UUID, decision models.OfferStatus) (*models.EventOffer, error) {
	if !decision.IsDecision() {
		return nil, apperr.BadRequestf("decision must be one of ACCEPTED, ACCEPTED_BY_CLIENT, DECLINED, REJECTED, REJECTED_BY_CLIENT")
	}
	o, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, o.EventID)
	if err != nil {
		return nil, err
	}
	if err := access.CanManageEvent(actor, event); err != nil {
		return nil, err
	}

	var (
		decided *models.EventOffer
		locked  int64
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		needID := o.ResolvedNeedID()
		cascade := decision.IsAccepted() && needID != nil
		if cascade {
			// Taking the need row lock first serializes accepts on the same need.
			already, err := tx.LockNeed(ctx, *needID)
			if err != nil {
				return err
			}
			if already {
				return apperr.Conflictf("need already has an accepted offer")
			}
		}

		cur, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if cur.Status == models.OfferLocked {
			return apperr.Conflictf("offer is locked")
		}
		if !cur.Status.CanTransitionTo(decision) {
			return apperr.BadRequestf("cannot move offer from %s to %s", cur.Status, decision)
		}
		version, err := tx.UpdateOfferStatus(ctx, offerID, decision, cur.Version)
		if err != nil {
			return err
		}
		cur.Status = decision
		cur.Version = version

		if cascade {
			n, err := tx.LockSiblingOffers(ctx, cur.EventID, *needID, offerID)
			if err != nil {
				return err
			}
			if err := tx.MarkNeedLocked(ctx, *needID); err != nil {
				return err
			}
			locked = n
		}
		decided = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer decided",
		zap.String("offer_id", offerID.String()),
		zap.String("decision", string(decision)),
		zap.Int64("locked_siblings", locked),
	)
	s.notifier.Notify(ctx, models.Notification{
		UserID: decided.ProviderID,
		Type:   models.NotificationOfferDecision,
		Title:  "Offer " + strings.ToLower(strings.ReplaceAll(string(decision), "_", " ")),
		Body:   event.Title,
		Meta: map[string]interface{}{
			"eventId": decided.EventID.String(),
			"offerId": offerID.String(),
			"status":  string(decision),
		},
	})
	return decided, nil
}
