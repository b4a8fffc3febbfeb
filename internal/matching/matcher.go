// Package matching ranks catalog providers for an event need.
package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/providers"
	"github.com/eventmarket/backend/internal/scoring"
)

// NeedMatcher returns providers for a need, best first.
type NeedMatcher interface {
	MatchNeed(ctx context.Context, need models.EventNeed, mctx models.MatchContext) ([]models.ProviderMatch, error)
}

// OfferSource lists active, public catalog service offers.
type OfferSource interface {
	ListServiceOffers(ctx context.Context, f providers.ServiceFilter) ([]models.ServiceOffer, error)
}

// Matcher scores catalog service offers locally with the fast policy.
type Matcher struct {
	source OfferSource
	policy scoring.Policy
}

// NewMatcher creates a local matcher.
func NewMatcher(source OfferSource) *Matcher {
	return &Matcher{source: source, policy: scoring.Fast()}
}

// MatchNeed filters service offers by the need's subcategory and tag, keeps each provider's best
// score and sorts descending. Ties keep catalog order.
func (m *Matcher) MatchNeed(ctx context.Context, need models.EventNeed, mctx models.MatchContext) ([]models.ProviderMatch, error) {
	var f providers.ServiceFilter
	if need.SubcategoryID != nil {
		f.SubcategoryID = *need.SubcategoryID
	}
	if need.TagID != nil {
		f.TagID = *need.TagID
	}
	offers, err := m.source.ListServiceOffers(ctx, f)
	if err != nil {
		return nil, err
	}

	scored := make([]models.ProviderMatch, 0, len(offers))
	for _, o := range offers {
		c := scoring.Candidate{
			ProviderID: o.ProviderID,
			Name:       o.ProviderName,
			City:       o.ProviderCity,
			BasePrice:  o.BasePrice,
			Services:   []models.ServiceOffer{o},
		}
		scored = append(scored, models.ProviderMatch{
			ProviderID: o.ProviderID,
			Name:       o.ProviderName,
			City:       o.ProviderCity,
			Score:      m.policy.Score(c, need, mctx),
		})
	}
	return rank(scored), nil
}

// rank keeps one entry per provider with its best score, in first-seen order, then sorts by
// score descending. The sort is stable so ties keep discovery order.
func rank(matches []models.ProviderMatch) []models.ProviderMatch {
	index := make(map[uuid.UUID]int, len(matches))
	out := make([]models.ProviderMatch, 0, len(matches))
	for _, m := range matches {
		if i, seen := index[m.ProviderID]; seen {
			if m.Score > out[i].Score {
				out[i].Score = m.Score
			}
			continue
		}
		index[m.ProviderID] = len(out)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// RemoteClient is the catalog match endpoint.
type RemoteClient interface {
	MatchNeed(ctx context.Context, need models.EventNeed, mctx models.MatchContext) []models.ProviderMatch
}

// RemoteMatcher delegates to the provider directory match endpoint.
// Remote failures degrade to an empty list and are never returned.
type RemoteMatcher struct {
	client RemoteClient
	logger *zap.Logger
}

// NewRemoteMatcher creates a remote matcher.
func NewRemoteMatcher(client RemoteClient, logger *zap.Logger) *RemoteMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteMatcher{client: client, logger: logger}
}

// MatchNeed implements NeedMatcher.
func (m *RemoteMatcher) MatchNeed(ctx context.Context, need models.EventNeed, mctx models.MatchContext) ([]models.ProviderMatch, error) {
	raw := m.client.MatchNeed(ctx, need, mctx)
	matches := rank(raw)
	m.logger.Debug("remote match",
		zap.String("need_id", need.ID.String()),
		zap.Int("returned", len(raw)),
		zap.Int("candidates", len(matches)))
	return matches, nil
}
