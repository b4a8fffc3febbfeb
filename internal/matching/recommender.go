package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/scoring"
)

// ProfileSource lists providers with their services and answers availability.
type ProfileSource interface {
	ListProfilesByCategory(ctx context.Context, categoryID string) ([]models.ProviderProfile, error)
	IsAvailable(ctx context.Context, providerID uuid.UUID, date *time.Time) (bool, error)
}

// Recommender ranks providers with the detailed 0-100 score.
type Recommender struct {
	source ProfileSource
	policy scoring.Policy
}

// NewRecommender creates a detailed recommender.
func NewRecommender(source ProfileSource) *Recommender {
	return &Recommender{source: source, policy: scoring.Detailed()}
}

// Recommend scores every provider offering the need's category. limit <= 0 returns all.
func (r *Recommender) Recommend(ctx context.Context, need models.EventNeed, mctx models.MatchContext, limit int) ([]models.ProviderMatch, error) {
	profiles, err := r.source.ListProfilesByCategory(ctx, need.CategoryID)
	if err != nil {
		return nil, err
	}

	matches := make([]models.ProviderMatch, 0, len(profiles))
	for _, p := range profiles {
		available, err := r.source.IsAvailable(ctx, p.UserID, mctx.Date)
		if err != nil {
			return nil, err
		}
		c := scoring.Candidate{
			ProviderID:      p.UserID,
			Name:            p.Name,
			City:            p.City,
			BasePrice:       p.BasePrice,
			EventsCompleted: p.EventsCompleted,
			Services:        p.Services,
			Available:       available,
		}
		matches = append(matches, models.ProviderMatch{
			ProviderID: p.UserID,
			Name:       p.Name,
			City:       p.City,
			Score:      r.policy.Score(c, need, mctx),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
