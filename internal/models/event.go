package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPlanning  EventStatus = "PLANNING"
	EventStatusActive    EventStatus = "ACTIVE"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCanceled  EventStatus = "CANCELED"
)

var eventForward = map[EventStatus]EventStatus{
	EventStatusDraft:    EventStatusPlanning,
	EventStatusPlanning: EventStatusActive,
	EventStatusActive:   EventStatusCompleted,
}

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPlanning, EventStatusActive, EventStatusCompleted, EventStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusCanceled
}

// CanTransitionTo allows one forward step, or cancellation from any non-terminal state.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == EventStatusCanceled {
		return true
	}
	return eventForward[s] == next
}

// Event is a client's planned event.
type Event struct {
	ID            uuid.UUID   `json:"id"`
	ClientID      uuid.UUID   `json:"clientId"`
	Title         string      `json:"title"`
	Type          string      `json:"type"`
	Date          *time.Time  `json:"date,omitempty"`
	City          string      `json:"city"`
	GuestCount    *int        `json:"guestCount,omitempty"`
	BudgetPlanned *float64    `json:"budgetPlanned,omitempty"`
	Currency      string      `json:"currency"`
	Status        EventStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// EventBrief is the planning summary used by matching and budget analysis.
// Fields absent from the stored brief fall back to the event's own values.
type EventBrief struct {
	EventID       uuid.UUID  `json:"eventId"`
	EventType     string     `json:"eventType"`
	City          string     `json:"city"`
	InitialBudget *float64   `json:"initialBudget,omitempty"`
	GuestCount    *int       `json:"guestCount,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// BriefFromEvent builds a brief from event fields alone.
func BriefFromEvent(e *Event) EventBrief {
	return EventBrief{
		EventID:       e.ID,
		EventType:     e.Type,
		City:          e.City,
		InitialBudget: e.BudgetPlanned,
		GuestCount:    e.GuestCount,
		Date:          e.Date,
	}
}

// MatchContext is the event snapshot handed to provider matching.
type MatchContext struct {
	EventType  string     `json:"eventType"`
	City       string     `json:"city"`
	GuestCount *int       `json:"guestCount,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

// MatchContext returns the matching snapshot of the brief.
func (b EventBrief) MatchContext() MatchContext {
	return MatchContext{
		EventType:  b.EventType,
		City:       b.City,
		GuestCount: b.GuestCount,
		Date:       b.Date,
	}
}
