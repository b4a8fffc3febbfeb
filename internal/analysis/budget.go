// Package analysis computes read-only budget, coverage and recommendation views of an event.
package analysis

import (
	"math"

	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/models"
)

// Uncategorized collects planned budget of needs without a category.
const Uncategorized = "uncategorized"

// Budget compares the template split of the initial budget with what is planned and committed.
type Budget struct {
	IdealBudget   map[string]float64 `json:"idealBudget"`
	PlannedBudget map[string]float64 `json:"plannedBudget"`
	RealBudget    map[string]float64 `json:"realBudget"`
}

func categoryOf(n models.EventNeed) string {
	if n.CategoryID == "" {
		return Uncategorized
	}
	return n.CategoryID
}

// ComputeBudget aggregates an event's budget per category. weights is the template of the
// event's type; offers without a resolvable need do not count toward the real budget.
func ComputeBudget(brief models.EventBrief, weights map[string]float64, needs []models.EventNeed, offers []models.EventOffer) Budget {
	b := Budget{
		IdealBudget:   make(map[string]float64, len(weights)),
		PlannedBudget: map[string]float64{},
		RealBudget:    map[string]float64{},
	}
	var initial float64
	if brief.InitialBudget != nil {
		initial = *brief.InitialBudget
	}
	for cat, w := range weights {
		b.IdealBudget[cat] = math.Round(initial * w)
	}

	needCategory := make(map[uuid.UUID]string, len(needs))
	for _, n := range needs {
		cat := categoryOf(n)
		needCategory[n.ID] = cat
		b.PlannedBudget[cat] += n.Budget()
	}

	// Real spend counts both accept statuses; the cascade allows only one of them per need.
	for i := range offers {
		o := &offers[i]
		if !o.Status.IsAccepted() {
			continue
		}
		needID := o.ResolvedNeedID()
		if needID == nil {
			continue
		}
		cat, ok := needCategory[*needID]
		if !ok {
			continue
		}
		b.RealBudget[cat] += o.TotalCost
	}
	return b
}
