package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

func TestCanManageEvent(t *testing.T) {
	owner := Actor{UserID: uuid.New(), Role: models.RoleClient}
	other := Actor{UserID: uuid.New(), Role: models.RoleClient}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	event := &models.Event{ClientID: owner.UserID}

	require.NoError(t, CanManageEvent(owner, event))
	require.NoError(t, CanManageEvent(admin, event))
	require.True(t, apperr.Is(CanManageEvent(other, event), apperr.Forbidden))
	require.True(t, apperr.Is(CanManageEvent(Actor{}, event), apperr.Unauthorized))
}

func TestOfferRules(t *testing.T) {
	provider := Actor{UserID: uuid.New(), Role: models.RoleProvider}
	client := Actor{UserID: uuid.New(), Role: models.RoleClient}
	offer := &models.EventOffer{ProviderID: provider.UserID}

	require.NoError(t, RequireProvider(provider))
	require.True(t, apperr.Is(RequireProvider(client), apperr.Forbidden))
	require.NoError(t, IsOfferProvider(provider, offer))
	require.True(t, apperr.Is(IsOfferProvider(client, offer), apperr.Forbidden))
}
