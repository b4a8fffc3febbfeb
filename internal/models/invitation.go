package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the state of an invitation sent to a provider.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationDeclined  InvitationStatus = "DECLINED"
	InvitationExpired   InvitationStatus = "EXPIRED"
	InvitationCancelled InvitationStatus = "CANCELLED"
)

// EventInvitation asks a provider, or a provider group, to quote for an event.
// Exactly one of ProviderID and ProviderGroupID is set.
type EventInvitation struct {
	ID              uuid.UUID        `json:"id"`
	EventID         uuid.UUID        `json:"eventId"`
	ClientID        uuid.UUID        `json:"clientId"`
	ProviderID      *uuid.UUID       `json:"providerId,omitempty"`
	ProviderGroupID *uuid.UUID       `json:"providerGroupId,omitempty"`
	NeedID          *uuid.UUID       `json:"needId,omitempty"`
	RoleHint        string           `json:"roleHint,omitempty"`
	Message         string           `json:"message,omitempty"`
	Status          InvitationStatus `json:"status"`
	ProposedBudget  *float64         `json:"proposedBudget,omitempty"`
	BudgetCurrency  string           `json:"budgetCurrency"`
	ReplyDeadline   *time.Time       `json:"replyDeadline,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Expired reports whether the reply deadline has passed at now.
func (i *EventInvitation) Expired(now time.Time) bool {
	return i.ReplyDeadline != nil && now.After(*i.ReplyDeadline)
}
