package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/catalog"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/templates"
	"github.com/eventmarket/backend/pkg/apperr"
)

func f64(v float64) *float64 { return &v }

func need(cat string, budget float64) models.EventNeed {
	return models.EventNeed{ID: uuid.New(), Label: cat, CategoryID: cat, BudgetPlanned: f64(budget)}
}

func offer(needID uuid.UUID, cost float64, status models.OfferStatus) models.EventOffer {
	return models.EventOffer{ID: uuid.New(), NeedID: &needID, TotalCost: cost, Status: status}
}

func TestComputeBudget(t *testing.T) {
	venue := need("venue", 5000)
	catering := need("catering", 3000)
	extra := models.EventNeed{ID: uuid.New(), Label: "Fireworks", BudgetPlanned: f64(400)}
	brief := models.EventBrief{EventType: "wedding", InitialBudget: f64(10000)}

	invID := uuid.New()
	viaInvitation := models.EventOffer{ID: uuid.New(), InvitationID: &invID, InvitationNeedID: &catering.ID,
		TotalCost: 2800, Status: models.OfferAcceptedByClient}
	offers := []models.EventOffer{
		offer(venue.ID, 4800, models.OfferAccepted),
		offer(venue.ID, 4000, models.OfferLocked),
		viaInvitation,
		{ID: uuid.New(), TotalCost: 999, Status: models.OfferAccepted},
	}

	b := ComputeBudget(brief, templates.Default().For("wedding"), []models.EventNeed{venue, catering, extra}, offers)

	require.Equal(t, 3000.0, b.IdealBudget["venue"])
	require.Equal(t, 2500.0, b.IdealBudget["catering"])
	require.Len(t, b.IdealBudget, len(templates.Default().For("wedding")))

	require.Equal(t, map[string]float64{"venue": 5000, "catering": 3000, Uncategorized: 400}, b.PlannedBudget)
	require.Equal(t, map[string]float64{"venue": 4800, "catering": 2800}, b.RealBudget)
}

func TestRealBudgetCountsBothAcceptStatuses(t *testing.T) {
	venue := need("venue", 5000)
	dj := need("dj", 900)
	offers := []models.EventOffer{
		offer(venue.ID, 4500, models.OfferAccepted),
		offer(dj.ID, 850, models.OfferAcceptedByClient),
		offer(dj.ID, 700, models.OfferSent),
	}

	b := ComputeBudget(models.EventBrief{EventType: "wedding"}, nil, []models.EventNeed{venue, dj}, offers)
	require.Equal(t, map[string]float64{"venue": 4500, "dj": 850}, b.RealBudget)
}

func TestComputeBudgetWithoutInitialBudget(t *testing.T) {
	b := ComputeBudget(models.EventBrief{EventType: "corporate"}, templates.Default().For("corporate"), nil, nil)
	for cat, v := range b.IdealBudget {
		require.Zero(t, v, cat)
	}
	require.Empty(t, b.PlannedBudget)
	require.Empty(t, b.RealBudget)
}

func TestGapsZeroOffersIsUncoveredHigh(t *testing.T) {
	n := need("venue", 1000)
	inv := models.EventInvitation{ID: uuid.New(), NeedID: &n.ID}

	gaps := ComputeGaps([]models.EventNeed{n}, []models.EventInvitation{inv}, nil)
	require.Len(t, gaps, 1)
	require.Equal(t, StatusUncovered, gaps[0].Status)
	require.Equal(t, RiskHigh, gaps[0].Risk)
	require.Equal(t, 1, gaps[0].InvitationsCount)
	require.Zero(t, gaps[0].OffersCount)
}

func TestGapsAllOffersOverBudget(t *testing.T) {
	n := need("venue", 1000)
	offers := []models.EventOffer{
		offer(n.ID, 1600, models.OfferSent),
		offer(n.ID, 2000, models.OfferRevised),
		offer(n.ID, 1501, models.OfferSent),
	}

	gaps := ComputeGaps([]models.EventNeed{n}, nil, offers)
	require.Equal(t, StatusInProgress, gaps[0].Status)
	require.Equal(t, RiskOverBudget, gaps[0].Risk)
	require.Equal(t, 3, gaps[0].OffersCount)
}

func TestGapsRiskTiers(t *testing.T) {
	single := need("music", 1000)
	healthy := need("catering", 1000)
	noBudget := models.EventNeed{ID: uuid.New(), Label: "Flowers"}
	accepted := need("venue", 1000)

	offers := []models.EventOffer{
		offer(single.ID, 900, models.OfferSent),
		offer(healthy.ID, 900, models.OfferSent),
		offer(healthy.ID, 5000, models.OfferSent),
		offer(noBudget.ID, 5000, models.OfferSent),
		offer(accepted.ID, 950, models.OfferAccepted),
		offer(accepted.ID, 990, models.OfferLocked),
	}

	gaps := ComputeGaps([]models.EventNeed{single, healthy, noBudget, accepted}, nil, offers)
	require.Equal(t, RiskMedium, gaps[0].Risk)
	require.Equal(t, RiskLow, gaps[1].Risk)
	require.Equal(t, RiskMedium, gaps[2].Risk, "zero budget never flags OVER_BUDGET")
	require.Equal(t, StatusCovered, gaps[3].Status)
	require.Equal(t, RiskLow, gaps[3].Risk)
}

type stubCatalog struct {
	cats []catalog.Category
	err  error
}

func (s stubCatalog) Categories(context.Context) ([]catalog.Category, error) { return s.cats, s.err }

func TestRecommendNeeds(t *testing.T) {
	cat := stubCatalog{cats: []catalog.Category{
		{ID: "music", Label: "Music", AveragePrice: 800},
		{ID: "venue", Label: "Venue", AveragePrice: 5000},
		{ID: "fireworks", Label: "Fireworks", AveragePrice: 1500},
		{ID: "catering", Label: "Catering", AveragePrice: 3000},
		{ID: "balloons", AveragePrice: 200},
	}}
	r := NewNeedsRecommender(cat, nil)
	brief := models.EventBrief{EventType: "wedding", InitialBudget: f64(20000)}
	existing := []models.EventNeed{need("venue", 6000)}

	got := r.RecommendNeeds(context.Background(), brief, templates.Default().For("wedding"), existing, 0)
	require.Len(t, got, 4)
	require.Equal(t, "catering", got[0].CategoryID)
	require.Equal(t, 5000.0, got[0].SuggestedBudget)
	require.Equal(t, "music", got[1].CategoryID)
	require.Equal(t, 1600.0, got[1].SuggestedBudget)
	// untemplated categories follow, priciest first, at their average price
	require.Equal(t, "fireworks", got[2].CategoryID)
	require.Equal(t, 1500.0, got[2].SuggestedBudget)
	require.Equal(t, "balloons", got[3].Label)

	got = r.RecommendNeeds(context.Background(), brief, templates.Default().For("wedding"), existing, 1)
	require.Len(t, got, 1)
}

func TestRecommendNeedsCatalogDown(t *testing.T) {
	r := NewNeedsRecommender(stubCatalog{err: errors.New("connection refused")}, nil)
	brief := models.EventBrief{EventType: "wedding", InitialBudget: f64(10000)}

	got := r.RecommendNeeds(context.Background(), brief, templates.Default().For("wedding"), []models.EventNeed{need("venue", 1)}, 3)
	require.Len(t, got, 3)
	require.Equal(t, "catering", got[0].CategoryID)
	require.Equal(t, "catering", got[0].Label)
	require.Equal(t, 2500.0, got[0].SuggestedBudget)
	for _, s := range got {
		require.NotEqual(t, "venue", s.CategoryID)
	}
}

type memEvents struct {
	event *models.Event
}

func (m memEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if id != m.event.ID {
		return nil, apperr.NotFoundf("event not found")
	}
	return m.event, nil
}

func (m memEvents) GetBrief(context.Context, uuid.UUID) (models.EventBrief, error) {
	return models.BriefFromEvent(m.event), nil
}

type needList []models.EventNeed

func (n needList) ListByEvent(context.Context, uuid.UUID) ([]models.EventNeed, error) { return n, nil }

type invitationList []models.EventInvitation

func (l invitationList) ListByEvent(context.Context, uuid.UUID) ([]models.EventInvitation, error) {
	return l, nil
}

type offerList []models.EventOffer

func (l offerList) ListByEvent(context.Context, uuid.UUID) ([]models.EventOffer, error) { return l, nil }

func TestServiceChecksOwnership(t *testing.T) {
	owner := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	e := &models.Event{ID: uuid.New(), ClientID: owner.UserID, Type: "wedding", BudgetPlanned: f64(10000)}
	n := need("venue", 3000)
	svc := NewService(memEvents{e}, needList{n}, invitationList{}, offerList{offer(n.ID, 2900, models.OfferAccepted)}, nil, nil)
	ctx := context.Background()

	b, err := svc.Budget(ctx, owner, e.ID)
	require.NoError(t, err)
	require.Equal(t, 3000.0, b.IdealBudget["venue"])
	require.Equal(t, 2900.0, b.RealBudget["venue"])

	gaps, err := svc.Gaps(ctx, owner, e.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCovered, gaps[0].Status)

	recs, err := svc.RecommendedNeeds(ctx, owner, e.ID, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	stranger := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	_, err = svc.Gaps(ctx, stranger, e.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = svc.Budget(ctx, owner, uuid.New())
	require.True(t, apperr.Is(err, apperr.NotFound))
}
