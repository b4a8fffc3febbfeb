package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationInvitation      = "invitation_received"
	NotificationOfferDecision   = "offer_decision"
	NotificationOfferReceived   = "offer_received"
	NotificationInvitationReply = "invitation_reply"
)

// Notification is an in-app message to a user.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	ReadAt    *time.Time             `json:"readAt,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}
