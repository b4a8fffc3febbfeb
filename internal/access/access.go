// Package access holds the ownership rules shared by event-scoped services.
package access

import (
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

func (a Actor) IsAdmin() bool    { return a.Role == models.RoleAdmin }
func (a Actor) IsProvider() bool { return a.Role == models.RoleProvider }

// Valid reports whether the actor was resolved from credentials.
func (a Actor) Valid() bool { return a.UserID != uuid.Nil && a.Role != "" }

// CanManageEvent allows the event owner and admins.
func CanManageEvent(a Actor, e *models.Event) error {
	if !a.Valid() {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	if a.IsAdmin() || e.ClientID == a.UserID {
		return nil
	}
	return apperr.Forbiddenf("not allowed to manage this event")
}

// RequireProvider allows provider users and admins.
func RequireProvider(a Actor) error {
	if !a.Valid() {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	if a.IsProvider() || a.IsAdmin() {
		return nil
	}
	return apperr.Forbiddenf("provider role required")
}

// IsOfferProvider allows the provider who made the offer, and admins.
func IsOfferProvider(a Actor, o *models.EventOffer) error {
	if !a.Valid() {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	if a.IsAdmin() || o.ProviderID == a.UserID {
		return nil
	}
	return apperr.Forbiddenf("not the provider of this offer")
}
