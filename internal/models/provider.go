package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider is the marketplace profile of a provider user.
type Provider struct {
	UserID          uuid.UUID `json:"userId"`
	Name            string    `json:"name"`
	City            string    `json:"city"`
	EventsCompleted int       `json:"eventsCompleted"`
	BasePrice       *float64  `json:"basePrice,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ServiceOffer is a catalog entry: one category of service a provider sells.
type ServiceOffer struct {
	ID            uuid.UUID `json:"id"`
	ProviderID    uuid.UUID `json:"providerId"`
	ProviderName  string    `json:"providerName"`
	ProviderCity  string    `json:"providerCity"`
	CategoryID    string    `json:"categoryId"`
	SubcategoryID *string   `json:"subcategoryId,omitempty"`
	Tags          []string  `json:"tags"`
	BasePrice     *float64  `json:"basePrice,omitempty"`
	Active        bool      `json:"active"`
	Public        bool      `json:"public"`
}

// ProviderProfile is a provider with its active services.
type ProviderProfile struct {
	Provider
	Services []ServiceOffer `json:"services"`
}

// ProviderMatch is one ranked candidate for a need.
type ProviderMatch struct {
	ProviderID uuid.UUID `json:"providerId"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	Score      float64   `json:"score"`
}
