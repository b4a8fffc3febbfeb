package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestDetailedPriceCompatibility(t *testing.T) {
	need := models.EventNeed{BudgetPlanned: floatPtr(1000)}
	policy := Detailed()

	closeMatch := Candidate{BasePrice: floatPtr(1050)} // 5% off
	require.Equal(t, 20.0, policy.Score(closeMatch, need, models.MatchContext{}))

	near := Candidate{BasePrice: floatPtr(1300)} // 30% off
	require.Equal(t, 5.0, policy.Score(near, need, models.MatchContext{}))

	far := Candidate{BasePrice: floatPtr(2000)}
	require.Equal(t, 0.0, policy.Score(far, need, models.MatchContext{}))

	noBudget := models.EventNeed{BudgetPlanned: floatPtr(0)}
	require.Equal(t, 0.0, policy.Score(closeMatch, noBudget, models.MatchContext{}))
}

func TestDetailedFallsBackToLowestServicePrice(t *testing.T) {
	need := models.EventNeed{BudgetPlanned: floatPtr(1000)}
	c := Candidate{Services: []models.ServiceOffer{
		{BasePrice: floatPtr(3000)},
		{BasePrice: floatPtr(900)},
		{},
	}}
	require.Equal(t, 20.0, Detailed().Score(c, need, models.MatchContext{}))
}

func TestDetailedFullScoreIsCapped(t *testing.T) {
	need := models.EventNeed{
		CategoryID:    "catering",
		SubcategoryID: strPtr("buffet"),
		TagID:         strPtr("vegan"),
		BudgetPlanned: floatPtr(5000),
	}
	c := Candidate{
		City:            "  lyon ",
		BasePrice:       floatPtr(5000),
		EventsCompleted: 25,
		Available:       true,
		Services: []models.ServiceOffer{
			{CategoryID: "catering", SubcategoryID: strPtr("buffet"), Tags: []string{"vegan", "halal"}},
		},
	}
	// 40 + 15 + 10 + 20 + 10 + 5 + 5 = 105 before clamping
	require.Equal(t, 100.0, Detailed().Score(c, need, models.MatchContext{City: "Lyon"}))
}

func TestDetailedPartialMatches(t *testing.T) {
	need := models.EventNeed{CategoryID: "music", SubcategoryID: strPtr("dj"), TagID: strPtr("jazz")}
	c := Candidate{
		City:            "Paris",
		EventsCompleted: 7,
		Services:        []models.ServiceOffer{{CategoryID: "music", SubcategoryID: strPtr("band")}},
	}
	// category 40 + experience 2
	require.Equal(t, 42.0, Detailed().Score(c, need, models.MatchContext{City: "Marseille"}))
}

func TestFastHeuristic(t *testing.T) {
	policy := Fast()
	need := models.EventNeed{Priority: models.PriorityHigh, CategoryID: "venue"}
	c := Candidate{City: "Lyon", Services: []models.ServiceOffer{{CategoryID: "venue"}}, Available: true, EventsCompleted: 50}

	require.InDelta(t, 1.7, policy.Score(c, need, models.MatchContext{City: "Lyon"}), 1e-9)
	// exact match only on the fast path
	require.InDelta(t, 1.2, policy.Score(c, need, models.MatchContext{City: "lyon"}), 1e-9)

	need.Priority = models.PriorityLow
	require.InDelta(t, 1.0, policy.Score(c, need, models.MatchContext{}), 1e-9)
}

func TestByName(t *testing.T) {
	p, ok := ByName("DETAILED")
	require.True(t, ok)
	require.Equal(t, "detailed", p.Name())

	p, ok = ByName("fast")
	require.True(t, ok)
	require.Equal(t, "fast", p.Name())

	_, ok = ByName("ai")
	require.False(t, ok)
}

func TestEmptyCityNeverMatches(t *testing.T) {
	c := Candidate{ProviderID: uuid.New()}
	require.Equal(t, 0.0, Detailed().Score(c, models.EventNeed{}, models.MatchContext{}))
	require.Equal(t, 1.0, Fast().Score(c, models.EventNeed{}, models.MatchContext{}))
}
