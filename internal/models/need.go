package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks how important a need is to the client.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// EventNeed is one service the event requires (venue, catering, ...).
// Once an offer against it is accepted the need is locked.
type EventNeed struct {
	ID             uuid.UUID  `json:"id"`
	EventID        uuid.UUID  `json:"eventId"`
	Label          string     `json:"label"`
	CategoryID     string     `json:"categoryId"`
	SubcategoryID  *string    `json:"subcategoryId,omitempty"`
	TagID          *string    `json:"tagId,omitempty"`
	BudgetPlanned  *float64   `json:"budgetPlanned,omitempty"`
	Priority       Priority   `json:"priority"`
	MustHave       bool       `json:"mustHave"`
	OffersDeadline *time.Time `json:"offersDeadline,omitempty"`
	Locked         bool       `json:"locked"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Budget returns the planned budget or 0 when unset.
func (n *EventNeed) Budget() float64 {
	if n.BudgetPlanned == nil {
		return 0
	}
	return *n.BudgetPlanned
}
