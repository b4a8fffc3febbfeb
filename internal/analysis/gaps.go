package analysis

import (
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/models"
)

// Coverage states of a need.
const (
	StatusCovered    = "COVERED"
	StatusInProgress = "IN_PROGRESS"
	StatusUncovered  = "UNCOVERED"
)

// Risk levels of a need.
const (
	RiskHigh       = "HIGH"
	RiskOverBudget = "OVER_BUDGET"
	RiskMedium     = "MEDIUM"
	RiskLow        = "LOW"
)

// overBudgetFactor is how far above the planned budget every offer must be to flag OVER_BUDGET.
const overBudgetFactor = 1.5

// NeedGap is the coverage of one need.
type NeedGap struct {
	NeedID           uuid.UUID `json:"needId"`
	Label            string    `json:"label"`
	Status           string    `json:"status"`
	Risk             string    `json:"risk"`
	InvitationsCount int       `json:"invitationsCount"`
	OffersCount      int       `json:"offersCount"`
}

// ComputeGaps reports, per need in the given order, how far it is from being covered.
func ComputeGaps(needs []models.EventNeed, invitations []models.EventInvitation, offers []models.EventOffer) []NeedGap {
	invitationsByNeed := map[uuid.UUID]int{}
	for _, inv := range invitations {
		if inv.NeedID != nil {
			invitationsByNeed[*inv.NeedID]++
		}
	}
	offersByNeed := map[uuid.UUID][]models.EventOffer{}
	for i := range offers {
		if needID := offers[i].ResolvedNeedID(); needID != nil {
			offersByNeed[*needID] = append(offersByNeed[*needID], offers[i])
		}
	}

	gaps := make([]NeedGap, 0, len(needs))
	for _, n := range needs {
		list := offersByNeed[n.ID]
		gaps = append(gaps, NeedGap{
			NeedID:           n.ID,
			Label:            n.Label,
			Status:           coverage(list),
			Risk:             risk(n, list),
			InvitationsCount: invitationsByNeed[n.ID],
			OffersCount:      len(list),
		})
	}
	return gaps
}

func coverage(offers []models.EventOffer) string {
	for _, o := range offers {
		if o.Status.IsAccepted() {
			return StatusCovered
		}
	}
	if len(offers) > 0 {
		return StatusInProgress
	}
	return StatusUncovered
}

// risk checks tiers in order; a need without offers is always HIGH.
func risk(n models.EventNeed, offers []models.EventOffer) string {
	if len(offers) == 0 {
		return RiskHigh
	}
	if budget := n.Budget(); budget > 0 {
		limit := budget * overBudgetFactor
		over := true
		for _, o := range offers {
			if o.TotalCost <= limit {
				over = false
				break
			}
		}
		if over {
			return RiskOverBudget
		}
	}
	if len(offers) < 2 {
		return RiskMedium
	}
	return RiskLow
}
