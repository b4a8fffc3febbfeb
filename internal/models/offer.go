package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the state of a provider's offer.
type OfferStatus string

const (
	OfferDraft            OfferStatus = "DRAFT"
	OfferSent             OfferStatus = "SENT"
	OfferRevised          OfferStatus = "REVISED"
	OfferAccepted         OfferStatus = "ACCEPTED"
	OfferAcceptedByClient OfferStatus = "ACCEPTED_BY_CLIENT"
	OfferDeclined         OfferStatus = "DECLINED"
	OfferRejected         OfferStatus = "REJECTED"
	OfferRejectedByClient OfferStatus = "REJECTED_BY_CLIENT"
	OfferWithdrawn        OfferStatus = "WITHDRAWN"
	OfferCancelled        OfferStatus = "CANCELLED"
	OfferLocked           OfferStatus = "LOCKED"
)

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferDraft: {OfferSent, OfferWithdrawn, OfferCancelled},
	OfferSent: {OfferRevised, OfferAccepted, OfferAcceptedByClient, OfferDeclined, OfferRejected,
		OfferRejectedByClient, OfferWithdrawn, OfferCancelled},
	OfferRevised: {OfferRevised, OfferAccepted, OfferAcceptedByClient, OfferDeclined, OfferRejected,
		OfferRejectedByClient, OfferWithdrawn, OfferCancelled},
}

// Valid reports whether s is a known offer status.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferDraft, OfferSent, OfferRevised, OfferAccepted, OfferAcceptedByClient, OfferDeclined,
		OfferRejected, OfferRejectedByClient, OfferWithdrawn, OfferCancelled, OfferLocked:
		return true
	}
	return false
}

// IsAccepted reports whether s is one of the accept statuses.
func (s OfferStatus) IsAccepted() bool {
	return s == OfferAccepted || s == OfferAcceptedByClient
}

// IsDecision reports whether s is a client decision on an offer.
func (s OfferStatus) IsDecision() bool {
	switch s {
	case OfferAccepted, OfferAcceptedByClient, OfferDeclined, OfferRejected, OfferRejectedByClient:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EventOffer is a provider's priced proposal for an event, optionally tied to a need.
type EventOffer struct {
	ID           uuid.UUID       `json:"id"`
	EventID      uuid.UUID       `json:"eventId"`
	InvitationID *uuid.UUID      `json:"invitationId,omitempty"`
	ProviderID   uuid.UUID       `json:"providerId"`
	NeedID       *uuid.UUID      `json:"needId,omitempty"`
	TotalCost    float64         `json:"totalCost"`
	Currency     string          `json:"currency"`
	Status       OfferStatus     `json:"status"`
	Version      int             `json:"version"`
	DetailsJSON  json.RawMessage `json:"detailsJson,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// InvitationNeedID is the need of the linked invitation, loaded alongside the offer.
	InvitationNeedID *uuid.UUID `json:"-"`
}

// ResolvedNeedID returns the offer's need, falling back to its invitation's need.
func (o *EventOffer) ResolvedNeedID() *uuid.UUID {
	if o.NeedID != nil {
		return o.NeedID
	}
	return o.InvitationNeedID
}
