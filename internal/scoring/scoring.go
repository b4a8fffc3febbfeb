// Package scoring ranks providers against an event need.
//
// The fast heuristic used by auto-invite and the detailed score used for interactive
// recommendations are two configurations of one weighted policy.
package scoring

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/models"
)

// Weights is the additive weight table of a policy. A zero weight disables its criterion.
type Weights struct {
	Base           float64
	Category       float64
	Subcategory    float64
	Tag            float64
	PriceClose     float64 // |price-budget| <= 20% of budget
	PriceNear      float64 // |price-budget| <= 40% of budget
	Availability   float64
	City           float64
	ExperienceHigh float64 // eventsCompleted >= 20
	ExperienceLow  float64 // eventsCompleted >= 5
	HighPriority   float64
}

// Candidate is a provider as seen by the scorer.
type Candidate struct {
	ProviderID      uuid.UUID
	Name            string
	City            string
	BasePrice       *float64
	EventsCompleted int
	Services        []models.ServiceOffer
	// Available is the precomputed availability on the event date.
	Available bool
}

// Price returns the provider's base price, or the lowest priced service when unset.
func (c Candidate) Price() (float64, bool) {
	if c.BasePrice != nil {
		return *c.BasePrice, true
	}
	found := false
	lowest := 0.0
	for _, s := range c.Services {
		if s.BasePrice == nil {
			continue
		}
		if !found || *s.BasePrice < lowest {
			lowest = *s.BasePrice
			found = true
		}
	}
	return lowest, found
}

func (c Candidate) offersCategory(id string) bool {
	for _, s := range c.Services {
		if s.CategoryID == id {
			return true
		}
	}
	return false
}

func (c Candidate) offersSubcategory(id string) bool {
	for _, s := range c.Services {
		if s.SubcategoryID != nil && *s.SubcategoryID == id {
			return true
		}
	}
	return false
}

func (c Candidate) listsTag(tag string) bool {
	for _, s := range c.Services {
		for _, t := range s.Tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}

// Policy scores one candidate against one need.
type Policy interface {
	Name() string
	Score(c Candidate, need models.EventNeed, mctx models.MatchContext) float64
}

// WeightedPolicy is the single scoring implementation behind every named policy.
type WeightedPolicy struct {
	name    string
	Weights Weights
	// FoldCity compares cities after trimming and case folding instead of exactly.
	FoldCity bool
	// Cap clamps the score when > 0.
	Cap float64
}

// Detailed is the 0-100 recommendation score.
func Detailed() WeightedPolicy {
	return WeightedPolicy{
		name: "detailed",
		Weights: Weights{
			Category:       40,
			Subcategory:    15,
			Tag:            10,
			PriceClose:     20,
			PriceNear:      5,
			Availability:   10,
			City:           5,
			ExperienceHigh: 5,
			ExperienceLow:  2,
		},
		FoldCity: true,
		Cap:      100,
	}
}

// Fast is the cheap heuristic used on the synchronous auto-invite path.
func Fast() WeightedPolicy {
	return WeightedPolicy{
		name: "fast",
		Weights: Weights{
			Base:         1.0,
			City:         0.5,
			HighPriority: 0.2,
		},
	}
}

// ByName returns the named policy.
func ByName(name string) (WeightedPolicy, bool) {
	switch strings.ToLower(name) {
	case "fast":
		return Fast(), true
	case "detailed":
		return Detailed(), true
	}
	return WeightedPolicy{}, false
}

func (p WeightedPolicy) Name() string { return p.name }

// Score sums every matching criterion. Missing optional fields contribute nothing.
func (p WeightedPolicy) Score(c Candidate, need models.EventNeed, mctx models.MatchContext) float64 {
	w := p.Weights
	score := w.Base

	if need.CategoryID != "" && c.offersCategory(need.CategoryID) {
		score += w.Category
	}
	if need.SubcategoryID != nil && *need.SubcategoryID != "" && c.offersSubcategory(*need.SubcategoryID) {
		score += w.Subcategory
	}
	if need.TagID != nil && *need.TagID != "" && c.listsTag(*need.TagID) {
		score += w.Tag
	}

	if budget := need.Budget(); budget > 0 {
		if price, ok := c.Price(); ok {
			diff := math.Abs(price - budget)
			switch {
			case diff <= 0.2*budget:
				score += w.PriceClose
			case diff <= 0.4*budget:
				score += w.PriceNear
			}
		}
	}

	if c.Available {
		score += w.Availability
	}
	if p.sameCity(c.City, mctx.City) {
		score += w.City
	}

	switch {
	case c.EventsCompleted >= 20:
		score += w.ExperienceHigh
	case c.EventsCompleted >= 5:
		score += w.ExperienceLow
	}

	if need.Priority == models.PriorityHigh {
		score += w.HighPriority
	}

	if p.Cap > 0 && score > p.Cap {
		score = p.Cap
	}
	return score
}

func (p WeightedPolicy) sameCity(a, b string) bool {
	if p.FoldCity {
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		return a != "" && strings.EqualFold(a, b)
	}
	return a != "" && a == b
}
