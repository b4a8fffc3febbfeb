package analysis

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/catalog"
	"github.com/eventmarket/backend/internal/models"
)

// DefaultRecommendLimit is used when the caller gives no positive limit.
const DefaultRecommendLimit = 5

// CategorySource lists catalog categories. *catalog.Client implements it.
type CategorySource interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
}

// NeedSuggestion is a category the event does not cover yet.
type NeedSuggestion struct {
	CategoryID      string  `json:"categoryId"`
	Label           string  `json:"label"`
	Weight          float64 `json:"weight"`
	SuggestedBudget float64 `json:"suggestedBudget"`
}

// NeedsRecommender suggests needs from the catalog ranked by the event-type template.
type NeedsRecommender struct {
	catalog CategorySource
	logger  *zap.Logger
}

// NewNeedsRecommender creates a recommender. A nil catalog means template-only suggestions.
func NewNeedsRecommender(c CategorySource, logger *zap.Logger) *NeedsRecommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NeedsRecommender{catalog: c, logger: logger}
}

type candidate struct {
	id     string
	label  string
	weight float64
	price  float64
}

// RecommendNeeds returns up to limit categories not used by needs, heaviest template weight
// first, then highest average price. An unreachable catalog degrades to template categories.
func (r *NeedsRecommender) RecommendNeeds(ctx context.Context, brief models.EventBrief, weights map[string]float64,
	needs []models.EventNeed, limit int) []NeedSuggestion {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	used := make(map[string]bool, len(needs))
	for _, n := range needs {
		if n.CategoryID != "" {
			used[n.CategoryID] = true
		}
	}

	var cands []candidate
	var cats []catalog.Category
	var err error
	if r.catalog != nil {
		cats, err = r.catalog.Categories(ctx)
		if err != nil {
			r.logger.Warn("catalog unavailable, using template categories", zap.Error(err))
		}
	}
	if r.catalog != nil && err == nil {
		for _, c := range cats {
			if used[c.ID] {
				continue
			}
			label := c.Label
			if label == "" {
				label = c.ID
			}
			cands = append(cands, candidate{id: c.ID, label: label, weight: weights[c.ID], price: c.AveragePrice})
		}
	} else {
		ids := make([]string, 0, len(weights))
		for id := range weights {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if !used[id] {
				cands = append(cands, candidate{id: id, label: id, weight: weights[id]})
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].weight != cands[j].weight {
			return cands[i].weight > cands[j].weight
		}
		return cands[i].price > cands[j].price
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}

	var initial float64
	if brief.InitialBudget != nil {
		initial = *brief.InitialBudget
	}
	out := make([]NeedSuggestion, 0, len(cands))
	for _, c := range cands {
		budget := c.price
		if initial > 0 && c.weight > 0 {
			budget = math.Round(initial * c.weight)
		}
		out = append(out, NeedSuggestion{CategoryID: c.id, Label: c.label, Weight: c.weight, SuggestedBudget: budget})
	}
	return out
}
