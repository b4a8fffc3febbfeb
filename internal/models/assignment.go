package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus tracks how far a provider has progressed toward contract.
type AssignmentStatus string

const (
	AssignmentShortlisted          AssignmentStatus = "SHORTLISTED"
	AssignmentSelected             AssignmentStatus = "SELECTED"
	AssignmentConfirmedPreContract AssignmentStatus = "CONFIRMED_PRE_CONTRACT"
)

// Rank orders statuses; 0 means unknown.
func (s AssignmentStatus) Rank() int {
	switch s {
	case AssignmentShortlisted:
		return 1
	case AssignmentSelected:
		return 2
	case AssignmentConfirmedPreContract:
		return 3
	}
	return 0
}

// EventProviderAssignment binds a provider or provider group to an event.
type EventProviderAssignment struct {
	ID              uuid.UUID        `json:"id"`
	EventID         uuid.UUID        `json:"eventId"`
	ProviderID      *uuid.UUID       `json:"providerId,omitempty"`
	ProviderGroupID *uuid.UUID       `json:"providerGroupId,omitempty"`
	Status          AssignmentStatus `json:"status"`
	SourceOfferID   *uuid.UUID       `json:"sourceOfferId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
